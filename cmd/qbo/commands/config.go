package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/fivetwenty-io/qbo-client/pkg/qbo"
	"github.com/fivetwenty-io/qbo-client/pkg/qboclient"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config keys shared by the root command and the client factory.
const (
	KeyCompanyID       = "company_id"
	KeySandbox         = "sandbox"
	KeyBaseURL         = "base_url"
	KeyCredentialsFile = "credentials_file"
	KeyMinorVersion    = "minor_version"
	KeyOutput          = "output"
	KeyDebug           = "debug"
	KeyLogLevel        = "log_level"
	KeyTimeout         = "timeout"
	KeyRetries         = "retries"
)

// ConfigDirName is the directory under $HOME holding the CLI files.
const ConfigDirName = ".qbo"

// Config is the effective CLI configuration.
type Config struct {
	CompanyID       string        `json:"company_id"       yaml:"company_id"`
	Sandbox         bool          `json:"sandbox"          yaml:"sandbox"`
	BaseURL         string        `json:"base_url"         yaml:"base_url"`
	CredentialsFile string        `json:"credentials_file" yaml:"credentials_file"`
	MinorVersion    string        `json:"minor_version"    yaml:"minor_version"`
	Output          string        `json:"output"           yaml:"output"`
	Debug           bool          `json:"debug"            yaml:"debug"`
	LogLevel        string        `json:"log_level"        yaml:"log_level"`
	Timeout         time.Duration `json:"timeout"          yaml:"timeout"`
	Retries         int           `json:"retries"          yaml:"retries"`
}

func loadConfig() *Config {
	return &Config{
		CompanyID:       viper.GetString(KeyCompanyID),
		Sandbox:         viper.GetBool(KeySandbox),
		BaseURL:         viper.GetString(KeyBaseURL),
		CredentialsFile: resolveCredentialsFile(viper.GetString(KeyCredentialsFile)),
		MinorVersion:    viper.GetString(KeyMinorVersion),
		Output:          viper.GetString(KeyOutput),
		Debug:           viper.GetBool(KeyDebug),
		LogLevel:        viper.GetString(KeyLogLevel),
		Timeout:         viper.GetDuration(KeyTimeout),
		Retries:         viper.GetInt(KeyRetries),
	}
}

// DefaultCredentialsFile returns $HOME/.qbo/credentials.yml.
func DefaultCredentialsFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, ConfigDirName, "credentials.yml"), nil
}

// resolveCredentialsFile falls back to the default credentials file when it
// exists. An empty result lets the client read the QB_* variables.
func resolveCredentialsFile(configured string) string {
	if configured != "" {
		return configured
	}

	path, err := DefaultCredentialsFile()
	if err != nil {
		return ""
	}

	_, err = os.Stat(path)
	if err != nil {
		return ""
	}

	return path
}

// clientConfig converts the CLI configuration to a client configuration.
func (c *Config) clientConfig() (*qbo.Config, error) {
	if c.CompanyID == "" {
		return nil, constants.ErrNoCompanyConfigured
	}

	config := &qbo.Config{
		CompanyID:       c.CompanyID,
		CredentialsFile: c.CredentialsFile,
		Sandbox:         c.Sandbox,
		BaseURL:         c.BaseURL,
		Debug:           c.Debug,
		HTTPTimeout:     c.Timeout,
		RetryMax:        c.Retries,
	}

	if c.loggingEnabled() {
		config.EnableLogging = true
		config.LogLevel = c.level()
		config.Logger = c.logger()
	}

	return config, nil
}

func (c *Config) loggingEnabled() bool {
	return c.Debug || c.LogLevel != ""
}

func (c *Config) level() qbo.LogLevel {
	if c.Debug {
		return qbo.LevelDebug
	}

	return qbo.ParseLogLevel(c.LogLevel)
}

// logger returns a stderr logger, or a discarding one when neither --debug
// nor --log-level is set.
func (c *Config) logger() qbo.Logger {
	if !c.loggingEnabled() {
		return qbo.NopLogger{}
	}

	return qbo.NewSlogLogger(os.Stderr, c.level())
}

// params returns the request parameters every command sends.
func (c *Config) params() *qbo.Params {
	params := qbo.NewParams()
	if c.MinorVersion != "" {
		params.WithMinorVersion(c.MinorVersion)
	}

	return params
}

// CreateClient builds an API client from the CLI configuration.
func CreateClient(ctx context.Context) (qbo.Client, *Config, error) {
	config := loadConfig()

	clientConfig, err := config.clientConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := qboclient.New(ctx, clientConfig)
	if err != nil {
		return nil, nil, err
	}

	return client, config, nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the QBO CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective configuration after flags, environment and config file are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()
			out := cmd.OutOrStdout()

			return render(out, config, func() error {
				table := tablewriter.NewWriter(out)
				table.Header("Property", "Value")
				_ = table.Append("Company ID", orNotAvailable(config.CompanyID))
				_ = table.Append("Base URL", (&qbo.Config{Sandbox: config.Sandbox, BaseURL: config.BaseURL}).ResolveBaseURL())
				_ = table.Append("Credentials", orNotAvailable(config.CredentialsFile))
				_ = table.Append("Minor Version", orNotAvailable(config.MinorVersion))
				_ = table.Append("Config File", orNotAvailable(viper.ConfigFileUsed()))

				err := table.Render()
				if err != nil {
					return fmt.Errorf("failed to render table: %w", err)
				}

				return nil
			})
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Persist a configuration value such as company_id, sandbox or minor_version",
		Args:  cobra.ExactArgs(constants.TwoArgumentsRequired),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], args[1])

			path, err := saveConfig()
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)

			return nil
		},
	}
}

// saveConfig writes the viper state to the config file in use, or to
// $HOME/.qbo/config.yml.
func saveConfig() (string, error) {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}

		configDir := filepath.Join(home, ConfigDirName)

		err = os.MkdirAll(configDir, constants.ConfigDirPerm)
		if err != nil {
			return "", fmt.Errorf("failed to create config directory: %w", err)
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	err := viper.WriteConfigAs(configFile)
	if err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}

	return configFile, nil
}

func orNotAvailable(value string) string {
	if value == "" {
		return constants.NotAvailable
	}

	return value
}
