// Package http provides HTTP server and handler implementations.
//
// This file implements JSON request body decoding.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// requestError is a malformed request, reported with its own status.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string {
	return e.msg
}

func unprocessable(format string, args ...any) error {
	return &requestError{status: http.StatusUnprocessableEntity, msg: fmt.Sprintf(format, args...)}
}

// decodeJSON reads one JSON value from the body into dst. Unknown fields
// are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return unprocessable("request body is required")
		case errors.As(err, &maxErr):
			return &requestError{status: http.StatusRequestEntityTooLarge, msg: fmt.Sprintf("request body must not exceed %d bytes", maxErr.Limit)}
		case errors.As(err, &syntaxErr):
			return unprocessable("malformed JSON at position %d", syntaxErr.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return unprocessable("malformed JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return unprocessable("%s has an invalid type", typeErr.Field)
			}
			return unprocessable("request body must be a JSON object")
		default:
			// time.Time and other text unmarshalers report plain errors
			return unprocessable("invalid request body: %s", strings.TrimPrefix(err.Error(), "json: "))
		}
	}

	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return unprocessable("request body must contain a single JSON object")
	}
	return nil
}
