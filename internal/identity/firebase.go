package identity

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseVerifier checks Firebase ID tokens issued to the mobile and web
// clients.
type FirebaseVerifier struct {
	client       *auth.Client
	checkRevoked bool
}

// NewFirebaseVerifier initialises the Firebase Admin SDK for projectID.
func NewFirebaseVerifier(ctx context.Context, projectID string, checkRevoked bool, opts ...option.ClientOption) (*FirebaseVerifier, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return &FirebaseVerifier{client: client, checkRevoked: checkRevoked}, nil
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", reject("missing token", nil)
	}
	var (
		tok *auth.Token
		err error
	)
	if v.checkRevoked {
		tok, err = v.client.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	} else {
		tok, err = v.client.VerifyIDToken(ctx, idToken)
	}
	if err != nil {
		return "", reject("firebase token rejected", err)
	}
	if tok.UID == "" {
		return "", reject("token has no subject", nil)
	}
	return tok.UID, nil
}
