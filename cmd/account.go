package cmd

import (
	"fmt"
	"io"

	"github.com/jfmyers9/muspy/pkg/muspy"
	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account and its notification settings",
	Args:  cobra.NoArgs,
	RunE:  runWhoami,
}

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Change notification settings",
	Long: `Change which releases muspy notifies you about.

Only the flags you pass are changed, for example:

  muspy settings --live=false --remix=false
  muspy settings --notify=true

Without flags the current settings are shown.`,
	Args: cobra.NoArgs,
	RunE: runSettings,
}

var deleteAccountCmd = &cobra.Command{
	Use:   "delete-account",
	Short: "Delete the muspy account",
	Long: `Delete the muspy account permanently, including all subscriptions.

This cannot be undone. The command refuses to run without --yes.`,
	Args: cobra.NoArgs,
	RunE: runDeleteAccount,
}

// settingFlags maps flag names to the settings they control
var settingFlags = []struct {
	name  string
	usage string
	field func(*muspy.NotifySettings) *bool
}{
	{"notify", "Send notification emails at all", func(s *muspy.NotifySettings) *bool { return &s.Notify }},
	{"album", "Notify about albums", func(s *muspy.NotifySettings) *bool { return &s.Album }},
	{"single", "Notify about singles", func(s *muspy.NotifySettings) *bool { return &s.Single }},
	{"ep", "Notify about EPs", func(s *muspy.NotifySettings) *bool { return &s.EP }},
	{"live", "Notify about live releases", func(s *muspy.NotifySettings) *bool { return &s.Live }},
	{"compilation", "Notify about compilations", func(s *muspy.NotifySettings) *bool { return &s.Compilation }},
	{"remix", "Notify about remixes", func(s *muspy.NotifySettings) *bool { return &s.Remix }},
	{"other", "Notify about other releases", func(s *muspy.NotifySettings) *bool { return &s.Other }},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(deleteAccountCmd)

	for _, f := range settingFlags {
		settingsCmd.Flags().Bool(f.name, false, f.usage)
	}
	deleteAccountCmd.Flags().Bool("yes", false, "Confirm deletion")
}

func runWhoami(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Email:   %s\n", user.Email())
	fmt.Fprintf(out, "User ID: %s\n", user.ID())
	fmt.Fprintln(out)
	printSettings(out, user.Settings)
	return nil
}

func runSettings(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	changed := 0
	for _, f := range settingFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, _ := cmd.Flags().GetBool(f.name)
		*f.field(&user.Settings) = v
		changed++
	}

	if changed > 0 {
		if err := user.Save(ctx); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		logger.Info().Int("changed", changed).Msg("Saved notification settings")
	}

	printSettings(cmd.OutOrStdout(), user.Settings)
	return nil
}

func runDeleteAccount(cmd *cobra.Command, args []string) error {
	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		return fmt.Errorf("refusing to delete the account without --yes")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	if err := user.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}

	logger.Warn().Str("user_id", user.ID()).Msg("Deleted account")
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Deleted account %s\n", user.Email())
	return nil
}

func printSettings(w io.Writer, s muspy.NotifySettings) {
	for _, f := range settingFlags {
		mark := " "
		if *f.field(&s) {
			mark = "x"
		}
		fmt.Fprintf(w, "[%s] %-12s %s\n", mark, f.name, f.usage)
	}
}
