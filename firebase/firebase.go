package firebase

import (
	"context"
	"fmt"

	"kboard/utilities"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// InitializeFirebase creates the Firebase app used for avatar storage.
// bucket becomes the app's default Storage bucket.
func InitializeFirebase(ctx context.Context, credentialsPath, bucket string) (*firebase.App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path is empty")
	}

	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, &firebase.Config{StorageBucket: bucket}, opt)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase: %w", err)
	}

	utilities.LogInfo("Firebase initialized with bucket %s", bucket)
	return app, nil
}
