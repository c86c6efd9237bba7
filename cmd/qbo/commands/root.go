package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fivetwenty-io/qbo-client/internal/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo is stamped by the linker.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the qbo command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:   "qbo",
		Short: "QuickBooks Online API v3 CLI",
		Long: `A command-line interface for the QuickBooks Online accounting API v3.

Credentials are read from $HOME/.qbo/credentials.yml (see "qbo auth --save"),
the file given with --credentials-file, or the QB_CONSUMER_KEY,
QB_CONSUMER_SECRET, QB_ACCESS_TOKEN and QB_ACCESS_TOKEN_SECRET variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(configFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default is $HOME/.qbo/config.yml)")
	flags.String("company", "", "company (realm) ID")
	flags.Bool("sandbox", false, "use the sandbox API")
	flags.String("base-url", "", "API base URL, overrides --sandbox")
	flags.String("credentials-file", "", "file with a credentials section")
	flags.String("minor-version", "", "API minor version sent with every request")
	flags.StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	flags.Bool("debug", false, "log requests and responses to stderr")
	flags.String("log-level", "", "log level (DEBUG, INFO, WARN, ERROR)")
	flags.Duration("timeout", constants.DefaultHTTPTimeout, "HTTP request timeout")
	flags.Int("retries", constants.DefaultRetryMax, "retries for connection errors, 429 and 5xx responses")

	for key, flag := range map[string]string{
		KeyCompanyID:       "company",
		KeySandbox:         "sandbox",
		KeyBaseURL:         "base-url",
		KeyCredentialsFile: "credentials-file",
		KeyMinorVersion:    "minor-version",
		KeyOutput:          "output",
		KeyDebug:           "debug",
		KeyLogLevel:        "log-level",
		KeyTimeout:         "timeout",
		KeyRetries:         "retries",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(NewVersionCommand(build.Version, build.Commit, build.Date))
	rootCmd.AddCommand(NewConfigCommand())
	rootCmd.AddCommand(NewAuthCommand())
	rootCmd.AddCommand(NewEntitiesCommand())
	rootCmd.AddCommand(NewQueryCommand())
	rootCmd.AddCommand(NewCountCommand())
	rootCmd.AddCommand(NewGetCommand())
	rootCmd.AddCommand(NewCreateCommand())
	rootCmd.AddCommand(NewUpdateCommand())
	rootCmd.AddCommand(NewDeleteCommand())
	rootCmd.AddCommand(NewReportCommand())
	rootCmd.AddCommand(NewCDCCommand())

	return rootCmd
}

func initConfig(configFile string) error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get user home directory: %w", err)
		}

		viper.AddConfigPath(filepath.Join(home, ConfigDirName))
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("QBO")
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}

	return nil
}
