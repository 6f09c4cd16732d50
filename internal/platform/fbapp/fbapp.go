// Package fbapp builds Firebase app handles for the Firebase-backed clients.
package fbapp

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/carelink/carelink/internal/config"
)

// Settings identify one Firebase project.
type Settings struct {
	ProjectID       string
	CredentialsFile string
	StorageBucket   string
}

// Configured reports whether the settings name a real project.
func (s Settings) Configured() bool {
	return config.Usable(s.ProjectID)
}

// New initializes an app for the project. Without a credentials file the
// application default credentials are used.
func New(ctx context.Context, s Settings) (*firebase.App, error) {
	if !s.Configured() {
		return nil, fmt.Errorf("firebase project id %q is not usable", s.ProjectID)
	}
	fc := &firebase.Config{ProjectID: s.ProjectID}
	if config.Usable(s.StorageBucket) {
		fc.StorageBucket = s.StorageBucket
	}

	var opts []option.ClientOption
	if config.Usable(s.CredentialsFile) {
		opts = append(opts, option.WithCredentialsFile(s.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, fc, opts...)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	return app, nil
}
