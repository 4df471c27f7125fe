package simplefin

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AuthState is the claimed SimpleFIN access URL saved between runs.
type AuthState struct {
	ClaimedAt  time.Time `json:"claimed_at"`
	AccessURL  string    `json:"access_url"`
	ClaimToken string    `json:"claim_token_hint"` // First and last characters only
}

// DefaultStatePath returns $XDG_DATA_HOME/spendscore/simplefin_auth.json, falling back
// to ~/.local/share.
func DefaultStatePath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "spendscore", "simplefin_auth.json"), nil
}

// loadOrClaim returns the saved access URL at statePath or claims token and saves the
// result there.
func loadOrClaim(ctx context.Context, httpClient *http.Client, token, statePath string) (*AuthState, error) {
	auth, err := loadAuthState(statePath)
	switch {
	case err == nil && auth.AccessURL != "":
		slog.Info("Using saved SimpleFIN access URL",
			"claimed_at", auth.ClaimedAt.Format("2006-01-02"),
			"state_file", statePath)
		return auth, nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to read SimpleFIN state %s: %w", statePath, err)
	}

	if token == "" {
		return nil, fmt.Errorf("no saved SimpleFIN access and no setup token given")
	}

	slog.Info("No saved auth found, claiming new SimpleFIN token")
	accessURL, err := claimToken(ctx, httpClient, token)
	if err != nil {
		return nil, fmt.Errorf("failed to claim token: %w", err)
	}

	auth = &AuthState{
		AccessURL:  accessURL,
		ClaimedAt:  time.Now().UTC(),
		ClaimToken: tokenHint(token),
	}
	if err := saveAuthState(statePath, auth); err != nil {
		return nil, fmt.Errorf("failed to save auth state: %w", err)
	}

	slog.Info("Claimed and saved SimpleFIN access URL", "state_file", statePath)
	return auth, nil
}

// claimToken exchanges a base64 setup token (an encoded claim URL) for an access URL.
func claimToken(ctx context.Context, httpClient *http.Client, token string) (string, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		decoded, err = base64.StdEncoding.DecodeString(token)
		if err != nil {
			return "", fmt.Errorf("failed to decode SimpleFIN token: %w", err)
		}
	}

	claimURL := string(decoded)
	if !isHTTPURL(claimURL) {
		return "", fmt.Errorf("decoded token is not a valid URL")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claimURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create claim request: %w", err)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to claim access URL: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read access URL: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to claim SimpleFIN access: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	accessURL := strings.TrimSpace(string(body))
	if !isHTTPURL(accessURL) {
		return "", fmt.Errorf("invalid access URL received")
	}
	return accessURL, nil
}

func loadAuthState(path string) (*AuthState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var auth AuthState
	if err := json.Unmarshal(data, &auth); err != nil {
		return nil, err
	}
	return &auth, nil
}

func saveAuthState(path string, auth *AuthState) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(auth, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func tokenHint(token string) string {
	if len(token) > 16 {
		return token[:8] + "..." + token[len(token)-8:]
	}
	return "short_token"
}

func isHTTPURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
