// utils/firebase.go
package utils

import (
	"context"

	"cafedesk/config"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FirebaseInit initializes the Firebase App and returns the Messaging
// client. Staff pushes are a best-effort side channel, so failures are
// returned for the caller to log rather than aborting startup.
func FirebaseInit() (*messaging.Client, error) {
	ctx := context.Background()
	opt := option.WithCredentialsFile(config.AppConfig.FirebaseServiceAccountFile)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, err
	}

	return app.Messaging(ctx)
}
