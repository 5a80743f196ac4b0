package middleware

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// FirebaseAuthConfig configures server-side verification of Firebase ID
// tokens. CredentialsJSON may be empty on GCP where application default
// credentials are available.
type FirebaseAuthConfig struct {
	ProjectID       string
	CredentialsJSON string
}

// NewFirebaseAuthClient initializes the Firebase Admin auth client. Returns an
// error when no project id is configured; the caller may treat that as
// "Firebase disabled" and run with JWT auth only.
func NewFirebaseAuthClient(ctx context.Context, cfg FirebaseAuthConfig) (*firebaseauth.Client, error) {
	if cfg.ProjectID == "" {
		return nil, fmt.Errorf("firebase project id not configured")
	}

	var opts []option.ClientOption
	if cfg.CredentialsJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, err
	}
	return app.Auth(ctx)
}
