package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fivetwenty-io/qbo-client/internal/auth"
	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qboclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type authOptions struct {
	consumerKey     string
	consumerSecret  string
	callbackURL     string
	verifier        string
	save            bool
	credentialsFile string
	showSecrets     bool
	endpoints       qboclient.Endpoints
}

// AuthResult is the outcome of the authorization flow.
type AuthResult struct {
	ConsumerKey       string `json:"consumer_key"               yaml:"consumer_key"`
	AccessToken       string `json:"access_token"               yaml:"access_token"`
	AccessTokenSecret string `json:"access_token_secret"        yaml:"access_token_secret"`
	CredentialsFile   string `json:"credentials_file,omitempty" yaml:"credentials_file,omitempty"`
}

// NewAuthCommand creates the auth command.
func NewAuthCommand() *cobra.Command {
	options := &authOptions{}

	cmd := &cobra.Command{
		Use:     "auth",
		Aliases: []string{"login"},
		Short:   "Authorize access to a company",
		Long: `Run the OAuth 1.0a authorization flow and obtain an access token pair.

The consumer key and secret default to QB_CONSUMER_KEY and QB_CONSUMER_SECRET;
a missing secret is prompted for. Open the printed URL, grant access and paste
the verifier. With --save the four secrets are written to the credentials file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAuthCommand(cmd, options)
		},
	}

	cmd.Flags().StringVar(&options.consumerKey, "consumer-key", "", "OAuth consumer key")
	cmd.Flags().StringVar(&options.consumerSecret, "consumer-secret", "", "OAuth consumer secret")
	cmd.Flags().StringVar(&options.callbackURL, "callback-url", "", "callback URL (default out-of-band)")
	cmd.Flags().StringVar(&options.verifier, "verifier", "", "OAuth verifier, prompted for when empty")
	cmd.Flags().BoolVar(&options.save, "save", false, "save the credentials")
	cmd.Flags().StringVar(&options.credentialsFile, "credentials-out", "", "file to save to (default $HOME/.qbo/credentials.yml)")
	cmd.Flags().BoolVar(&options.showSecrets, "show-secrets", false, "print secrets instead of masking them")

	cmd.Flags().StringVar(&options.endpoints.RequestTokenURL, "request-token-url", constants.RequestTokenURL, "OAuth request token URL")
	cmd.Flags().StringVar(&options.endpoints.AuthorizeURL, "authorize-url", constants.AuthorizeURL, "OAuth authorization URL")
	cmd.Flags().StringVar(&options.endpoints.AccessTokenURL, "access-token-url", constants.AccessTokenURL, "OAuth access token URL")
	_ = cmd.Flags().MarkHidden("request-token-url")
	_ = cmd.Flags().MarkHidden("authorize-url")
	_ = cmd.Flags().MarkHidden("access-token-url")

	return cmd
}

func runAuthCommand(cmd *cobra.Command, options *authOptions) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	consumerKey := firstNonEmpty(options.consumerKey, os.Getenv(constants.EnvConsumerKey))

	consumerSecret, err := resolveConsumerSecret(options.consumerSecret, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	authorizerOptions := []qboclient.AuthorizerOption{qboclient.WithEndpoints(options.endpoints)}
	if options.callbackURL != "" {
		authorizerOptions = append(authorizerOptions, qboclient.WithCallbackURL(options.callbackURL))
	}

	authorizer, err := qboclient.NewAuthorizer(consumerKey, consumerSecret, authorizerOptions...)
	if err != nil {
		return err
	}

	requestToken, err := authorizer.RequestToken()
	if err != nil {
		return fmt.Errorf("failed to obtain request token: %w", err)
	}

	authorizeURL, err := authorizer.AuthorizeURL(requestToken)
	if err != nil {
		return fmt.Errorf("failed to build authorization URL: %w", err)
	}

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Open this URL in a browser and grant access:\n\n  %s\n\n", authorizeURL)

	verifier := options.verifier
	if verifier == "" {
		verifier, err = prompt(in, cmd.ErrOrStderr(), "Verifier: ")
		if err != nil {
			return err
		}
	}

	if verifier == "" {
		return constants.ErrVerifierRequired
	}

	accessToken, err := authorizer.AccessToken(requestToken, verifier)
	if err != nil {
		return fmt.Errorf("failed to obtain access token: %w", err)
	}

	result := AuthResult{
		ConsumerKey:       consumerKey,
		AccessToken:       accessToken.Token,
		AccessTokenSecret: accessToken.Secret,
	}

	if options.save {
		path, err := saveCredentials(options.credentialsFile, auth.Credentials{
			ConsumerKey:       consumerKey,
			ConsumerSecret:    consumerSecret,
			AccessToken:       accessToken.Token,
			AccessTokenSecret: accessToken.Secret,
		})
		if err != nil {
			return err
		}

		result.CredentialsFile = path
	}

	if !options.showSecrets {
		result.AccessTokenSecret = constants.MaskedSecret
	}

	return render(out, result, func() error {
		table := tablewriter.NewWriter(out)
		table.Header("Property", "Value")
		_ = table.Append("Consumer Key", result.ConsumerKey)
		_ = table.Append("Access Token", result.AccessToken)
		_ = table.Append("Access Token Secret", result.AccessTokenSecret)
		_ = table.Append("Credentials File", orNotAvailable(result.CredentialsFile))

		err := table.Render()
		if err != nil {
			return fmt.Errorf("failed to render table: %w", err)
		}

		return nil
	})
}

// resolveConsumerSecret uses the flag, then QB_CONSUMER_SECRET, then a
// terminal prompt without echo.
func resolveConsumerSecret(flagValue string, out io.Writer) (string, error) {
	secret := firstNonEmpty(flagValue, os.Getenv(constants.EnvConsumerSecret))
	if secret != "" {
		return secret, nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec // file descriptors fit in int
	if !term.IsTerminal(fd) {
		return "", nil
	}

	_, _ = fmt.Fprint(out, "Consumer secret: ")

	secretBytes, err := term.ReadPassword(fd)
	if err != nil {
		return "", fmt.Errorf("failed to read consumer secret: %w", err)
	}

	_, _ = fmt.Fprintln(out)

	return strings.TrimSpace(string(secretBytes)), nil
}

func saveCredentials(path string, creds auth.Credentials) (string, error) {
	if path == "" {
		var err error

		path, err = DefaultCredentialsFile()
		if err != nil {
			return "", err
		}
	}

	err := auth.NewCredentialsStore(path).Save(creds)
	if err != nil {
		return "", fmt.Errorf("failed to save credentials: %w", err)
	}

	return path, nil
}

func prompt(in *bufio.Reader, out io.Writer, label string) (string, error) {
	_, _ = fmt.Fprint(out, label)

	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	return strings.TrimSpace(line), nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}

	return ""
}
