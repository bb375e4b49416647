package sheets

import (
	"context"
	"encoding/json"
	"fmt"

	"webhook_relay_backend/platform/config"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	sheetsapi "google.golang.org/api/sheets/v4"
)

const selfSignedAudience = "https://sheets.googleapis.com/"

// serviceAccount is the identity both auth modes sign as.
type serviceAccount struct {
	projectID string
	email     string
	keyID     string
	key       PrivateKey
	tokenURL  string
}

// newTokenSource returns a cached token source for the configured auth mode.
// oauth exchanges a signed assertion at the token URL; jwt signs a
// self-signed token used directly as the bearer.
func newTokenSource(ctx context.Context, account serviceAccount, mode string) (oauth2.TokenSource, error) {
	if mode == config.AuthModeJWT {
		credentials, err := account.credentialsJSON()
		if err != nil {
			return nil, err
		}
		source, err := google.JWTAccessTokenSourceFromJSON(credentials, selfSignedAudience)
		if err != nil {
			return nil, fmt.Errorf("self-signed token source: %w", err)
		}
		return source, nil
	}

	cfg := &jwt.Config{
		Email:        account.email,
		PrivateKey:   account.key.PEM,
		PrivateKeyID: account.keyID,
		Scopes:       []string{sheetsapi.SpreadsheetsScope},
		TokenURL:     account.tokenURL,
	}
	return cfg.TokenSource(ctx), nil
}

type credentialsFile struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id,omitempty"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// credentialsJSON renders the account as a service-account key file.
func (sa serviceAccount) credentialsJSON() ([]byte, error) {
	data, err := json.Marshal(credentialsFile{
		Type:         "service_account",
		ProjectID:    sa.projectID,
		PrivateKeyID: sa.keyID,
		PrivateKey:   string(sa.key.PEM),
		ClientEmail:  sa.email,
		TokenURI:     sa.tokenURL,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal service account: %w", err)
	}
	return data, nil
}
