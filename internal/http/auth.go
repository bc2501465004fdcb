package http

import (
	"errors"
	"net/http"
	"strings"

	"plenio/internal/core"
	"plenio/internal/identity"
	"plenio/internal/log"
)

// authenticated wraps a handler behind bearer token verification.
type authenticated func(w http.ResponseWriter, r *http.Request, subject string)

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func requireAuth(verifier identity.Verifier, next authenticated) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := log.FromContext(ctx).WithComponent(log.ComponentAuth)

		token, ok := bearerToken(r)
		if !ok {
			logger.WarnContext(ctx, "Missing bearer token", log.FieldPath, r.URL.Path)
			writeError(ctx, w, r, core.ErrUnauthenticated)
			return
		}

		subject, err := verifier.Verify(ctx, token)
		if err == nil && subject == "" {
			err = core.ErrUnauthenticated
		}
		if err != nil {
			logger.WarnContext(ctx, "Token rejected", log.FieldPath, r.URL.Path, log.FieldError, err)
			if !errors.Is(err, core.ErrUnauthenticated) {
				// verifier outages still read as a failed login to the client
				err = errors.Join(core.ErrUnauthenticated, err)
			}
			writeError(ctx, w, r, err)
			return
		}

		ctx = log.WithLogger(ctx, log.FromContext(ctx).With(log.FieldSubject, subject))
		next(w, r.WithContext(ctx), subject)
	}
}
