package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/jfmyers9/muspy/internal/config"
	"github.com/jfmyers9/muspy/pkg/muspy"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Log in to muspy",
	Long: `Log in to muspy and remember the account.

You'll be prompted for the email and password of your muspy account.
The credentials are verified against the service and the email is saved
to ~/.config/muspy/config.yaml. The password is never saved: set
MUSPY_PASSWORD or enter it when asked.

Don't have an account yet? Use 'muspy register'.`,
	Args: cobra.NoArgs,
	RunE: runAuth,
}

var registerCmd = &cobra.Command{
	Use:   "register EMAIL",
	Short: "Create a muspy account",
	Long: `Create a new muspy account for EMAIL.

muspy sends an activation link to the address unless --no-activation is
given. The email is saved to the config file afterwards.`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(registerCmd)

	registerCmd.Flags().Bool("no-activation", false, "Do not send an activation email")
}

func runAuth(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())

	fmt.Fprintln(out, "muspy Authentication")
	fmt.Fprintln(out, "====================")
	fmt.Fprintln(out)

	// Check if we already have an account
	if cfg.Email != "" {
		fmt.Fprintf(out, "Found existing account: %s\n", cfg.Email)
		response, err := prompt(cmd, reader, "Use this account? [Y/n]: ")
		if err != nil {
			response = "y"
		}
		response = strings.ToLower(response)
		if response != "" && response != "y" && response != "yes" {
			cfg.Email = ""
			cfg.Password = ""
		}
	}

	if cfg.Email == "" {
		email, err := prompt(cmd, reader, "Email: ")
		if err != nil {
			return fmt.Errorf("failed to read email: %w", err)
		}
		cfg.Email = email
	}

	if cfg.Password == "" {
		password, err := promptPassword(cmd, reader, "Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		cfg.Password = password
	}

	if cfg.Email == "" || cfg.Password == "" {
		return fmt.Errorf("email and password are required")
	}

	fmt.Fprintln(out, "\nVerifying credentials...")
	user, err := muspy.Connect(ctx, clientConfig(cfg.Email, cfg.Password))
	if err != nil {
		if errors.Is(err, muspy.ErrAuthenticationFailed) {
			return fmt.Errorf("muspy rejected the email or password")
		}
		return fmt.Errorf("failed to verify credentials: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "\n✓ Logged in as %s (user id %s)\n", user.Email(), user.ID())
	fmt.Fprintf(out, "✓ Email saved to %s/config.yaml\n", config.GetConfigDir())
	fmt.Fprintln(out, "\nYou can now use 'muspy artists' and 'muspy releases'.")

	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	out := cmd.OutOrStdout()
	reader := bufio.NewReader(cmd.InOrStdin())
	email := args[0]

	password := cfg.Password
	if password == "" {
		var err error
		password, err = promptPassword(cmd, reader, "Choose a password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
	}

	noActivation, _ := cmd.Flags().GetBool("no-activation")

	user, err := muspy.Register(ctx, clientConfig(email, password), !noActivation)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	cfg.Email = user.Email()
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Fprintf(out, "✓ Created account %s (user id %s)\n", user.Email(), user.ID())
	if !noActivation {
		fmt.Fprintln(out, "Check your inbox for the activation link.")
	}

	return nil
}
