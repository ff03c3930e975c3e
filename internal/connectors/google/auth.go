package google

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
)

// LoadInstalledAppConfig reads an OAuth client configuration from a
// Google `credentials.json` file for the given scopes. The file is an
// external prerequisite and is never created by this service.
func LoadInstalledAppConfig(credentialsPath string, scopes ...string) (*oauth2.Config, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read credentials file %s: %w", credentialsPath, err)
	}

	cfg, err := googleoauth.ConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}
	return cfg, nil
}

// TokenFromFile loads a cached OAuth token.
func TokenFromFile(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file %s: %w", path, err)
	}
	return &token, nil
}

// SaveToken writes an OAuth token to disk with restrictive permissions.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write token file %s: %w", path, err)
	}
	return nil
}

// persistingTokenSource wraps an oauth2.TokenSource and writes refreshed
// tokens back to the token file so restarts keep a valid token.
type persistingTokenSource struct {
	mu        sync.Mutex
	inner     oauth2.TokenSource
	tokenPath string
	last      string
}

// NewFileTokenSource returns a token source backed by the cached token
// file. Refreshed tokens are persisted transparently.
// Returns an error when no token is cached; run the auth flow first.
func NewFileTokenSource(ctx context.Context, cfg *oauth2.Config, tokenPath string) (oauth2.TokenSource, error) {
	token, err := TokenFromFile(tokenPath)
	if err != nil {
		return nil, fmt.Errorf("no cached token (run `automail auth` first): %w", err)
	}

	return &persistingTokenSource{
		inner:     cfg.TokenSource(ctx, token),
		tokenPath: tokenPath,
		last:      token.AccessToken,
	}, nil
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.inner.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if token.AccessToken != s.last {
		s.last = token.AccessToken
		if err := SaveToken(s.tokenPath, token); err != nil {
			// A failed save is not fatal; the token is still valid.
			return token, nil
		}
	}
	return token, nil
}

// Authorize runs the installed-app OAuth flow: it starts a local
// callback server, prints the consent URL, waits for the redirect and
// exchanges the authorization code. The resulting token is saved to
// tokenPath and returned.
func Authorize(ctx context.Context, cfg *oauth2.Config, tokenPath string) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}

	srv := newCallbackServer(state)
	if err := srv.start(); err != nil {
		return nil, err
	}
	defer srv.shutdown()

	cfg.RedirectURL = fmt.Sprintf("http://127.0.0.1:%d/callback", srv.port)
	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	fmt.Printf("Open the following URL in your browser to authorise access:\n\n%s\n\n", authURL)

	code, err := srv.waitForCode(ctx, 5*time.Minute)
	if err != nil {
		return nil, err
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := SaveToken(tokenPath, token); err != nil {
		return nil, err
	}
	return token, nil
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// callbackServer receives the OAuth redirect on a loopback port.
type callbackServer struct {
	expectedState string
	port          int
	codeCh        chan string
	errCh         chan error
	server        *http.Server
	listener      net.Listener
}

func newCallbackServer(expectedState string) *callbackServer {
	return &callbackServer{
		expectedState: expectedState,
		codeCh:        make(chan string, 1),
		errCh:         make(chan error, 1),
	}
}

func (s *callbackServer) start() error {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start callback listener: %w", err)
	}
	s.listener = listener
	if tcpAddr, ok := listener.Addr().(*net.TCPAddr); ok {
		s.port = tcpAddr.Port
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)
	s.server = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errCh <- err:
			default:
			}
		}
	}()

	return nil
}

func (s *callbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		s.errCh <- fmt.Errorf("oauth error: %s", errParam)
		fmt.Fprint(w, "Authorization failed. You can close this window.")
		return
	}

	if r.URL.Query().Get("state") != s.expectedState {
		s.errCh <- fmt.Errorf("oauth state mismatch")
		fmt.Fprint(w, "Authorization failed: invalid state. You can close this window.")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		s.errCh <- fmt.Errorf("no authorization code received")
		fmt.Fprint(w, "Authorization failed: no code received.")
		return
	}

	select {
	case s.codeCh <- code:
	default:
	}
	fmt.Fprint(w, "Authorization successful! You can close this window and return to the terminal.")
}

func (s *callbackServer) waitForCode(ctx context.Context, timeout time.Duration) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	select {
	case code := <-s.codeCh:
		return code, nil
	case err := <-s.errCh:
		return "", err
	case <-ctx.Done():
		return "", fmt.Errorf("timed out waiting for authorization: %w", ctx.Err())
	}
}

func (s *callbackServer) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = s.server.Shutdown(ctx)
}
