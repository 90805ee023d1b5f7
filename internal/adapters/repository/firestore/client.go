// Package firestore adapts the poll and response repositories to the hosted
// document store the product's data model was born on: polls/{id} documents
// with a responses sub-collection underneath.
package firestore

import (
	"context"
	"fmt"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

const (
	pollsCollection     = "polls"
	responsesCollection = "responses"
)

// NewClient initializes the Firestore client from either a credentials file
// path (GOOGLE_APPLICATION_CREDENTIALS) or inline JSON (GOOGLE_CREDENTIALS).
func NewClient(ctx context.Context) (*firestore.Client, error) {
	var opts []option.ClientOption
	if creds := os.Getenv("GOOGLE_CREDENTIALS"); creds != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(creds)))
	} else if path := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); path != "" {
		opts = append(opts, option.WithCredentialsFile(path))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to firestore: %w", err)
	}
	return client, nil
}
