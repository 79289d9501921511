/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/jfmyers9/muspy/internal/config"
	"github.com/jfmyers9/muspy/internal/logging"
	"github.com/jfmyers9/muspy/pkg/muspy"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	logLevel string
	logFile  string
	logJSON  bool
	baseURL  string
	timeout  time.Duration
)

// State shared by subcommands, set up before each run
var (
	cfg    *config.Config
	logger = zerolog.Nop()
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "muspy",
	Short: "Command line client for muspy.com",
	Long: `muspy is a command line client for muspy.com, the release
notification service.

It manages your muspy account, notification settings and artist
subscriptions, and lists the releases of the artists you follow.

Credentials are read from MUSPY_EMAIL and MUSPY_PASSWORD, or from
~/.config/muspy/config.yaml (email only). When the password is not set
you are prompted for it.`,
	Version:           fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Log file path (default: stderr)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Log as JSON instead of console text")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "muspy API base URL (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "HTTP request timeout (overrides config)")
}

// setup loads the configuration and creates the logger
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if flags.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = logJSON
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = baseURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}

	logger, err = logging.New(logging.Options{
		Level: cfg.Log.Level,
		File:  cfg.Log.File,
		JSON:  cfg.Log.JSON,
	}, cmd.ErrOrStderr())
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	logger.Debug().
		Str("version", version).
		Str("command", cmd.CommandPath()).
		Msg("Starting muspy")

	return nil
}

// commandContext returns a context cancelled on interrupt
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return signal.NotifyContext(ctx, os.Interrupt)
}

// clientConfig builds the library configuration from the loaded config
func clientConfig(email, password string) muspy.Config {
	return muspy.Config{
		Email:             email,
		Password:          password,
		BaseURL:           cfg.BaseURL,
		Timeout:           cfg.Timeout,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logging.ClientLogger{Logger: logger},
	}
}

// newClient creates an anonymous client
func newClient() (*muspy.Client, error) {
	client, err := muspy.NewClient(clientConfig("", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, nil
}

// connect authenticates with the configured credentials, prompting for
// whatever is missing
func connect(ctx context.Context, cmd *cobra.Command) (*muspy.User, error) {
	reader := bufio.NewReader(cmd.InOrStdin())

	email := cfg.Email
	if email == "" {
		var err error
		email, err = prompt(cmd, reader, "Email: ")
		if err != nil {
			return nil, fmt.Errorf("failed to read email: %w", err)
		}
	}

	password := cfg.Password
	if password == "" {
		var err error
		password, err = promptPassword(cmd, reader, fmt.Sprintf("Password for %s: ", email))
		if err != nil {
			return nil, fmt.Errorf("failed to read password: %w", err)
		}
	}

	if email == "" || password == "" {
		return nil, fmt.Errorf("email and password are required (run 'muspy auth' or set MUSPY_EMAIL and MUSPY_PASSWORD)")
	}

	user, err := muspy.Connect(ctx, clientConfig(email, password))
	if errors.Is(err, muspy.ErrAuthenticationFailed) {
		return nil, fmt.Errorf("authentication failed for %s: %w", email, err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}

	logger.Debug().Str("user_id", user.ID()).Msg("Connected")
	return user, nil
}

// prompt prints label and reads one line
func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// promptPassword reads a password without echo when stdin is a terminal
func promptPassword(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.ErrOrStderr(), label)
		password, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(password)), nil
	}
	return prompt(cmd, reader, label)
}
