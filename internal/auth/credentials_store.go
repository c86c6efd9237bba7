package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/spf13/viper"
)

// CredentialsStore persists a credential set into the credentials section of
// a config file, keeping any other sections intact.
type CredentialsStore struct {
	path  string
	mutex sync.Mutex
}

// NewCredentialsStore creates a store backed by path. The file format
// follows its extension.
func NewCredentialsStore(path string) *CredentialsStore {
	return &CredentialsStore{path: path}
}

// Path returns the backing file.
func (s *CredentialsStore) Path() string {
	return s.path
}

// Save writes creds to the file, creating it and its directory if needed.
func (s *CredentialsStore) Save(creds Credentials) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !creds.Complete() {
		return fmt.Errorf("saving credentials: %w", qbo.ErrMissingCredentials)
	}

	v := viper.New()
	v.SetConfigFile(s.path)

	err := v.ReadInConfig()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("reading %s: %w", s.path, err)
	}

	v.Set(sectionKey(constants.EnvConsumerKey), creds.ConsumerKey)
	v.Set(sectionKey(constants.EnvConsumerSecret), creds.ConsumerSecret)
	v.Set(sectionKey(constants.EnvAccessToken), creds.AccessToken)
	v.Set(sectionKey(constants.EnvAccessTokenSecret), creds.AccessTokenSecret)

	err = os.MkdirAll(filepath.Dir(s.path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("creating credentials directory: %w", err)
	}

	err = v.WriteConfigAs(s.path)
	if err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}

	err = os.Chmod(s.path, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("restricting credentials file: %w", err)
	}

	return nil
}

// Load reads the credential set back.
func (s *CredentialsStore) Load() (Credentials, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return LoadCredentials(Credentials{}, s.path)
}

func sectionKey(key string) string {
	return constants.CredentialsSection + "." + strings.ToLower(key)
}
