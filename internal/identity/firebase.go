package identity

import (
	"context"

	"firebase.google.com/go/v4/auth"
)

// FirebaseProvider adapts the Firebase auth client to the identity
// interface the services consume, so tests can substitute a fake.
type FirebaseProvider struct {
	client *auth.Client
}

func NewFirebaseProvider(client *auth.Client) *FirebaseProvider {
	return &FirebaseProvider{client: client}
}

func (p *FirebaseProvider) GetUser(ctx context.Context, uid string) (string, string, *string, error) {
	user, err := p.client.GetUser(ctx, uid)
	if err != nil {
		return "", "", nil, err
	}
	var pictureURL *string
	if user.PhotoURL != "" {
		u := user.PhotoURL
		pictureURL = &u
	}
	return user.DisplayName, user.Email, pictureURL, nil
}

func (p *FirebaseProvider) DeleteUser(ctx context.Context, uid string) error {
	return p.client.DeleteUser(ctx, uid)
}
