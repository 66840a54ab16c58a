package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"vidyeet/internal/credentials"
	"vidyeet/internal/mux"
	"vidyeet/internal/presentation"
	"vidyeet/internal/upload"
	"vidyeet/pkg/config"
)

var (
	verbose    bool
	jsonOutput bool
	configPath string

	cfg      *config.Config
	renderer *presentation.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "vidyeet",
	Short: "Upload videos to Mux from the command line",
	Long: `Vidyeet uploads local video files to Mux Video and prints streaming
and download URLs once the asset is ready.

Output is human readable on a terminal and a single JSON object when stdout
is piped or --json is set.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config.yaml (default $VIDYEET_CONFIG or ./config.yaml)")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		renderer = presentation.NewTerminal(jsonOutput)

		loaded, err := config.Load(configPath)
		if err != nil {
			setupLogger(slog.LevelInfo)
			return err
		}
		cfg = loaded
		setupLogger(cfg.LogLevel())
		return nil
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	err = asUsageError(err)

	if renderer == nil {
		renderer = presentation.NewTerminal(jsonOutput)
	}
	renderer.Error(err, hintFor(err))
	return exitCode(err)
}

func setupLogger(level slog.Level) {
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// asUsageError marks cobra's command lookup failures as usage errors. They
// come back unwrapped from Execute.
func asUsageError(err error) error {
	if strings.HasPrefix(err.Error(), "unknown command ") {
		return usageError{err}
	}
	return err
}

func exactFileArg(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		return usageError{fmt.Errorf("%s requires exactly one file path, got %d", cmd.Name(), len(args))}
	}
	return nil
}

func exitCode(err error) int {
	var usage usageError
	if errors.As(err, &usage) {
		return upload.SeverityUser.ExitCode()
	}

	var cfgErr *config.Error
	if errors.As(err, &cfgErr) || errors.Is(err, credentials.ErrNotLoggedIn) {
		return upload.SeverityConfig.ExitCode()
	}

	return upload.SeverityOf(err).ExitCode()
}

func hintFor(err error) string {
	var (
		validationErr *upload.ValidationError
		apiErr        *mux.APIError
		cfgErr        *config.Error
		capErr        *upload.CapacityError
		timeoutErr    *upload.PollingTimeoutError
		usage         usageError
	)

	switch {
	case errors.As(err, &usage):
		return "Run 'vidyeet --help' for usage."
	case errors.As(err, &validationErr):
		return validationErr.Hint()
	case errors.Is(err, credentials.ErrNotLoggedIn):
		return "Run 'vidyeet login' or set MUX_TOKEN_ID and MUX_TOKEN_SECRET."
	case errors.As(err, &cfgErr):
		return "Check the configuration file or remove it to use the defaults."
	case errors.As(err, &apiErr) && apiErr.Unauthorized():
		return "Your credentials were rejected. Run 'vidyeet login' to update them."
	case errors.As(err, &capErr):
		return "Delete some assets in the Mux dashboard and try again."
	case errors.As(err, &timeoutErr):
		return "The asset may still be processing. Check the Mux dashboard or raise upload.max_wait_seconds."
	default:
		return ""
	}
}

func envCredentials() credentials.Credentials {
	return credentials.Credentials{TokenID: cfg.MuxTokenID, TokenSecret: cfg.MuxTokenSecret}
}
