package credentials

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	appDir   = "vidyeet"
	fileName = "credentials.yaml"
)

var ErrNotLoggedIn = errors.New("not logged in")

type Credentials struct {
	TokenID     string `yaml:"token_id"`
	TokenSecret string `yaml:"token_secret"`
}

func (c Credentials) Valid() bool {
	return c.TokenID != "" && c.TokenSecret != ""
}

// AuthHeader is the HTTP Basic authorization value for the Mux API.
func (c Credentials) AuthHeader() string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.TokenID+":"+c.TokenSecret))
}

// MaskedID keeps the first and last four characters of the token id.
func (c Credentials) MaskedID() string {
	if len(c.TokenID) <= 8 {
		return strings.Repeat("*", len(c.TokenID))
	}
	return c.TokenID[:4] + "..." + c.TokenID[len(c.TokenID)-4:]
}

// Store keeps credentials in a YAML file readable only by the owner.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// DefaultStore places the file under the user's config directory.
func DefaultStore() (*Store, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate config directory: %w", err)
	}
	return NewStore(filepath.Join(base, appDir)), nil
}

func (s *Store) Path() string {
	return filepath.Join(s.dir, fileName)
}

func (s *Store) Load() (*Credentials, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read credentials: %w", err)
	}

	var creds Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", s.Path(), err)
	}
	if !creds.Valid() {
		return nil, ErrNotLoggedIn
	}

	return &creds, nil
}

// Save writes creds and reports whether an existing file was replaced.
func (s *Store) Save(creds Credentials) (bool, error) {
	if !creds.Valid() {
		return false, errors.New("token id and secret are required")
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return false, fmt.Errorf("failed to create credentials directory: %w", err)
	}

	_, statErr := os.Stat(s.Path())
	replaced := statErr == nil

	data, err := yaml.Marshal(creds)
	if err != nil {
		return false, fmt.Errorf("failed to marshal credentials: %w", err)
	}

	if err := os.WriteFile(s.Path(), data, 0o600); err != nil {
		return false, fmt.Errorf("failed to save credentials: %w", err)
	}
	// WriteFile keeps the mode of an existing file.
	if err := os.Chmod(s.Path(), 0o600); err != nil {
		return false, fmt.Errorf("failed to restrict credentials file: %w", err)
	}

	return replaced, nil
}

// Remove deletes the credentials file and reports whether it existed.
func (s *Store) Remove() (bool, error) {
	err := os.Remove(s.Path())
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove credentials: %w", err)
	}
	return true, nil
}

// Resolve prefers complete credentials taken from the environment over the
// stored file.
func Resolve(store *Store, env Credentials) (*Credentials, error) {
	if env.Valid() {
		return &env, nil
	}
	return store.Load()
}
