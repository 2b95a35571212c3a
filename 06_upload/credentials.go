package upload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/youtube/v3"
)

// ClientConfig reads the OAuth client secrets downloaded from the Google
// Cloud console. The file is required.
func ClientConfig(secretsFile string) (*oauth2.Config, error) {
	data, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	conf, err := google.ConfigFromJSON(data, youtube.YoutubeUploadScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	return conf, nil
}

// TokenStore persists the OAuth token as JSON between runs
type TokenStore struct {
	path string
}

// NewTokenStore creates a store backed by path
func NewTokenStore(path string) *TokenStore {
	return &TokenStore{path: path}
}

// Load returns the cached token. A missing file yields an error matching os.ErrNotExist.
func (s *TokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("parse token %s: %w", s.path, err)
	}
	return &tok, nil
}

// Save writes tok, readable only by the current user
func (s *TokenStore) Save(tok *oauth2.Token) error {
	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return err
		}
	}
	return os.WriteFile(s.path, data, 0600)
}

// Authorizer obtains a brand-new token from the account owner
type Authorizer interface {
	Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error)
}

// CredentialProvider hands out a valid token: the cached one if still valid,
// a refreshed one if it has expired, or a freshly authorized one otherwise.
type CredentialProvider struct {
	conf  *oauth2.Config
	store *TokenStore
	auth  Authorizer
}

// NewCredentialProvider wires the client config, token cache and interactive fallback
func NewCredentialProvider(conf *oauth2.Config, store *TokenStore, auth Authorizer) *CredentialProvider {
	return &CredentialProvider{conf: conf, store: store, auth: auth}
}

// Token returns a valid token, persisting it whenever it changes
func (p *CredentialProvider) Token(ctx context.Context) (*oauth2.Token, error) {
	tok, err := p.store.Load()
	switch {
	case err == nil && tok.Valid():
		return tok, nil
	case err == nil && tok.RefreshToken != "":
		log.Println("[upload] Cached token expired — refreshing...")
		fresh, err := p.conf.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, fmt.Errorf("refresh token: %w", err)
		}
		if err := p.store.Save(fresh); err != nil {
			return nil, fmt.Errorf("save token: %w", err)
		}
		return fresh, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		log.Printf("[upload] ⚠️  Ignoring unreadable token cache: %v", err)
	}

	if p.auth == nil {
		return nil, fmt.Errorf("no usable token in %s and no interactive authorizer", p.store.path)
	}
	log.Println("[upload] No usable token — starting authorization flow...")
	fresh, err := p.auth.Authorize(ctx, p.conf)
	if err != nil {
		return nil, fmt.Errorf("authorize: %w", err)
	}
	if err := p.store.Save(fresh); err != nil {
		return nil, fmt.Errorf("save token: %w", err)
	}
	return fresh, nil
}

// HTTPClient returns an authorized client for the YouTube API
func (p *CredentialProvider) HTTPClient(ctx context.Context) (*http.Client, error) {
	tok, err := p.Token(ctx)
	if err != nil {
		return nil, err
	}
	return oauth2.NewClient(ctx, p.tokenSource(ctx, tok)), nil
}

// tokenSource refreshes tok as it expires and writes every new access token
// back to the store, so a long daemon run leaves a current cache behind.
func (p *CredentialProvider) tokenSource(ctx context.Context, tok *oauth2.Token) oauth2.TokenSource {
	return &persistingTokenSource{
		base:  oauth2.ReuseTokenSource(tok, p.conf.TokenSource(ctx, tok)),
		store: p.store,
		last:  tok.AccessToken,
	}
}

type persistingTokenSource struct {
	base  oauth2.TokenSource
	store *TokenStore

	mu   sync.Mutex
	last string
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			log.Printf("[upload] ⚠️  Could not persist refreshed token: %v", err)
		} else {
			log.Println("[upload] Refreshed token saved")
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}

// LocalServerAuthorizer runs the installed-app flow: it prints the consent URL
// and receives the code on a loopback HTTP server bound to a random port.
type LocalServerAuthorizer struct {
	Out io.Writer
}

func (a *LocalServerAuthorizer) Authorize(ctx context.Context, conf *oauth2.Config) (*oauth2.Token, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("listen for oauth callback: %w", err)
	}
	defer ln.Close()

	c := *conf
	c.RedirectURL = fmt.Sprintf("http://%s/", ln.Addr().String())
	state := uuid.NewString()

	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	srv := &http.Server{Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if e := q.Get("error"); e != "" {
			fmt.Fprintln(w, "Authorization failed. You may close this window.")
			select {
			case done <- result{err: fmt.Errorf("authorization denied: %s", e)}:
			default:
			}
			return
		}
		fmt.Fprintln(w, "Authorization complete. You may close this window.")
		select {
		case done <- result{code: q.Get("code")}:
		default:
		}
	})}
	go srv.Serve(ln)
	defer srv.Close()

	out := a.Out
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintf(out, "\nPlease visit this URL to authorize this application:\n%s\n\n",
		c.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce))

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		tok, err := c.Exchange(ctx, res.code)
		if err != nil {
			return nil, fmt.Errorf("exchange code: %w", err)
		}
		return tok, nil
	}
}
