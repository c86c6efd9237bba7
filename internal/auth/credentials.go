package auth

import (
	"fmt"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/spf13/viper"
)

// Credentials is the set of OAuth 1.0a secrets that signs every request.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether all four secrets are present.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// LoadCredentials resolves the secrets. When file is set they are read from
// its credentials section and explicit values are ignored; otherwise each
// explicit value falls back to its environment variable. An incomplete set
// yields qbo.ErrMissingCredentials.
func LoadCredentials(explicit Credentials, file string) (Credentials, error) {
	var (
		creds Credentials
		err   error
	)

	if file != "" {
		creds, err = credentialsFromFile(file)
		if err != nil {
			return Credentials{}, err
		}
	} else {
		creds = credentialsFromEnv(explicit)
	}

	if !creds.Complete() {
		return Credentials{}, qbo.ErrMissingCredentials
	}

	return creds, nil
}

func credentialsFromFile(file string) (Credentials, error) {
	v := viper.New()
	v.SetConfigFile(file)

	err := v.ReadInConfig()
	if err != nil {
		return Credentials{}, fmt.Errorf("reading credentials file: %w", err)
	}

	section := v.Sub(constants.CredentialsSection)
	if section == nil {
		return Credentials{}, fmt.Errorf("%w: no %s section in %s",
			qbo.ErrMissingCredentials, constants.CredentialsSection, file)
	}

	return Credentials{
		ConsumerKey:       section.GetString(constants.EnvConsumerKey),
		ConsumerSecret:    section.GetString(constants.EnvConsumerSecret),
		AccessToken:       section.GetString(constants.EnvAccessToken),
		AccessTokenSecret: section.GetString(constants.EnvAccessTokenSecret),
	}, nil
}

func credentialsFromEnv(explicit Credentials) Credentials {
	v := viper.New()

	pick := func(value, key string) string {
		if value != "" {
			return value
		}

		_ = v.BindEnv(key)

		return v.GetString(key)
	}

	return Credentials{
		ConsumerKey:       pick(explicit.ConsumerKey, constants.EnvConsumerKey),
		ConsumerSecret:    pick(explicit.ConsumerSecret, constants.EnvConsumerSecret),
		AccessToken:       pick(explicit.AccessToken, constants.EnvAccessToken),
		AccessTokenSecret: pick(explicit.AccessTokenSecret, constants.EnvAccessTokenSecret),
	}
}
