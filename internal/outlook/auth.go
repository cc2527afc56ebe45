package outlook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"golang.org/x/oauth2"
)

var requiredScopes = []string{
	"https://graph.microsoft.com/Calendars.Read",
	"offline_access",
}

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// DefaultTokenPath returns ~/.timesheet/auth/msgraph_tokens.json.
func DefaultTokenPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".timesheet", "auth", "msgraph_tokens.json"), nil
}

// Authenticator obtains Microsoft Graph tokens with the OAuth2 device code
// flow and caches them on disk.
type Authenticator struct {
	TenantID  string
	ClientID  string
	TokenPath string
	// Out receives the sign-in instructions and warnings.
	Out io.Writer
	// Endpoint overrides the Microsoft identity platform endpoints.
	Endpoint *oauth2.Endpoint
}

// oauth2Config returns the oauth2.Config for Microsoft Graph.
func (a *Authenticator) oauth2Config() *oauth2.Config {
	endpoint := oauth2.Endpoint{
		DeviceAuthURL: msEndpoint(a.TenantID, "devicecode"),
		TokenURL:      msEndpoint(a.TenantID, "token"),
		AuthStyle:     oauth2.AuthStyleInParams,
	}
	if a.Endpoint != nil {
		endpoint = *a.Endpoint
	}
	return &oauth2.Config{
		ClientID: a.ClientID,
		Scopes:   requiredScopes,
		Endpoint: endpoint,
	}
}

func (a *Authenticator) out() io.Writer {
	if a.Out == nil {
		return os.Stderr
	}
	return a.Out
}

// loadToken loads a previously saved token from disk. A missing file yields (nil, nil).
func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(a.TokenPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading token file: %w", err)
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("corrupt token file (delete %s to re-authenticate): %w", a.TokenPath, err)
	}
	return &tok, nil
}

// saveToken persists a token to disk atomically.
func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(a.TokenPath), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling token: %w", err)
	}
	tmpPath := a.TokenPath + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmpPath, a.TokenPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving token file: %w", err)
	}
	return nil
}

// Token returns a usable token. It loads the saved token, refreshes it if
// needed, or runs a new device code flow if nothing valid is available.
func (a *Authenticator) Token(ctx context.Context) (*oauth2.Token, error) {
	cfg := a.oauth2Config()

	tok, err := a.loadToken()
	if err != nil {
		// Corrupt token, warn and re-auth.
		fmt.Fprintf(a.out(), "Warning: %v\n", err)
		tok = nil
	}

	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := cfg.TokenSource(ctx, tok).Token()
		if err == nil {
			if err2 := a.saveToken(refreshed); err2 != nil {
				fmt.Fprintf(a.out(), "Warning: could not save refreshed token: %v\n", err2)
			}
			return refreshed, nil
		}
		fmt.Fprintf(a.out(), "Token refresh failed (%v), re-authenticating...\n", err)
	}

	resp, err := cfg.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(a.out())
	fmt.Fprintln(a.out(), "To sign in, use a web browser to open the page:")
	fmt.Fprintf(a.out(), "  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.out(), "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(a.out())

	newTok, err := cfg.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}

	if err := a.saveToken(newTok); err != nil {
		fmt.Fprintf(a.out(), "Warning: could not save token: %v\n", err)
	}
	return newTok, nil
}

// HTTPClient returns an authenticated client whose refreshed tokens are
// written back to TokenPath.
func (a *Authenticator) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := a.Token(ctx)
	if err != nil {
		return nil, err
	}
	ts := a.oauth2Config().TokenSource(ctx, tok)
	return oauth2.NewClient(ctx, &savingTokenSource{ts: ts, auth: a}), nil
}

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	auth *Authenticator
	last string
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		// Best-effort save; ignore errors.
		_ = s.auth.saveToken(tok)
	}
	return tok, nil
}
