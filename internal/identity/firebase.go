package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
)

const identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"

// FirebaseProvider implements Provider against Firebase Authentication.
// Token verification goes through the admin SDK; password sign-up and
// sign-in use the Identity Toolkit REST API, which is the only surface
// exposing the password grant.
type FirebaseProvider struct {
	authClient *auth.Client
	apiKey     string
	httpClient *http.Client
}

func NewFirebaseProvider(authClient *auth.Client, apiKey string) *FirebaseProvider {
	return &FirebaseProvider{
		authClient: authClient,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *FirebaseProvider) CreateAccount(ctx context.Context, email, password string) (string, string, error) {
	res, err := p.call(ctx, "accounts:signUp", email, password)
	if err != nil {
		return "", "", err
	}
	return res.LocalID, res.IDToken, nil
}

func (p *FirebaseProvider) SignIn(ctx context.Context, email, password string) (string, error) {
	res, err := p.call(ctx, "accounts:signInWithPassword", email, password)
	if err != nil {
		return "", err
	}
	return res.IDToken, nil
}

func (p *FirebaseProvider) VerifyToken(ctx context.Context, token string) (string, error) {
	decoded, err := p.authClient.VerifyIDToken(ctx, token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return decoded.UID, nil
}

type toolkitResponse struct {
	IDToken string `json:"idToken"`
	LocalID string `json:"localId"`
	Error   struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *FirebaseProvider) call(ctx context.Context, endpoint, email, password string) (*toolkitResponse, error) {
	body, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s?key=%s", identityToolkitURL, endpoint, p.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity toolkit %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var res toolkitResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("identity toolkit %s: %w", endpoint, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, toolkitError(res.Error.Message)
	}
	return &res, nil
}

func toolkitError(message string) error {
	switch {
	case strings.HasPrefix(message, "EMAIL_EXISTS"):
		return ErrEmailTaken
	case strings.HasPrefix(message, "EMAIL_NOT_FOUND"),
		strings.HasPrefix(message, "INVALID_PASSWORD"),
		strings.HasPrefix(message, "INVALID_LOGIN_CREDENTIALS"):
		return ErrWrongCredentials
	default:
		return fmt.Errorf("identity provider error: %s", message)
	}
}
