package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rezonia/efactura/internal/model"
	"github.com/rezonia/efactura/internal/tokenstore"
)

// fileStore keeps tokens in a JSON file so CLI invocations share one login.
// It is the "caller-supplied backend" example of the tokenstore contract.
type fileStore struct {
	path string
}

var _ tokenstore.Store = (*fileStore)(nil)

func newFileStore(path string) (*fileStore, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, ".efactura", "token.json")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	return &fileStore{path: path}, nil
}

func (s *fileStore) load() (map[string]*model.Token, error) {
	payload, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]*model.Token{}, nil
	}
	if err != nil {
		return nil, err
	}
	tokens := map[string]*model.Token{}
	if err := json.Unmarshal(payload, &tokens); err != nil {
		// Unreadable cache, start over.
		return map[string]*model.Token{}, nil
	}
	return tokens, nil
}

func (s *fileStore) save(tokens map[string]*model.Token) error {
	payload, err := json.MarshalIndent(tokens, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, payload, 0o600)
}

// SetToken installs or overwrites the token for a user.
func (s *fileStore) SetToken(ctx context.Context, user string, token *model.Token) error {
	tokens, err := s.load()
	if err != nil {
		return err
	}
	tokens[strings.ToLower(user)] = token
	return s.save(tokens)
}

// GetToken returns the stored token, deleting it when expired.
func (s *fileStore) GetToken(ctx context.Context, user string) (*model.Token, error) {
	tokens, err := s.load()
	if err != nil {
		return nil, err
	}
	token, ok := tokens[strings.ToLower(user)]
	if !ok {
		return nil, nil
	}
	if token.IsExpired() {
		delete(tokens, strings.ToLower(user))
		if err := s.save(tokens); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return token, nil
}

// RemoveToken deletes the entry for a user.
func (s *fileStore) RemoveToken(ctx context.Context, user string) error {
	tokens, err := s.load()
	if err != nil {
		return err
	}
	delete(tokens, strings.ToLower(user))
	return s.save(tokens)
}

// HasValidToken reports whether a stored token is currently usable.
func (s *fileStore) HasValidToken(ctx context.Context, user string) (bool, error) {
	token, err := s.GetToken(ctx, user)
	if err != nil {
		return false, err
	}
	return token != nil && token.IsValid(), nil
}

// currentUser returns the owner of the most recent login, so commands do not
// need an explicit --user flag in the common single-user case.
func (s *fileStore) currentUser() (string, error) {
	tokens, err := s.load()
	if err != nil {
		return "", err
	}
	var latest *model.Token
	var user string
	for u, t := range tokens {
		if latest == nil || t.CreatedAt.After(latest.CreatedAt) {
			latest = t
			user = u
		}
	}
	if user == "" {
		return "", model.ErrAuthenticationRequired
	}
	return user, nil
}
