package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/jfmyers9/muspy/pkg/muspy"
	"github.com/spf13/cobra"
)

// artistsCmd represents the artists command
var artistsCmd = &cobra.Command{
	Use:   "artists",
	Short: "Manage artist subscriptions",
	Long: `List, add and remove the artists you follow on muspy.

Artists are identified by their MusicBrainz id (mbid).`,
}

var artistsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List subscribed artists",
	Args:    cobra.NoArgs,
	RunE:    runArtistsList,
}

var artistsAddCmd = &cobra.Command{
	Use:   "add MBID...",
	Short: "Subscribe to artists",
	Long: `Subscribe to one or more artists.

Every artist is attempted; failures are reported together at the end.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runArtistsAdd,
}

var artistsRemoveCmd = &cobra.Command{
	Use:     "remove MBID...",
	Aliases: []string{"rm"},
	Short:   "Unsubscribe from artists",
	Args:    cobra.MinimumNArgs(1),
	RunE:    runArtistsRemove,
}

var artistsImportCmd = &cobra.Command{
	Use:   "import LASTFM_USER",
	Short: "Subscribe to the top artists of a last.fm user",
	Long: `Ask muspy to subscribe to the most played artists of a last.fm
profile.

Periods: overall, 12month, 6month, 3month, 7day.`,
	Args: cobra.ExactArgs(1),
	RunE: runArtistsImport,
}

var artistCmd = &cobra.Command{
	Use:   "artist MBID",
	Short: "Show an artist",
	Args:  cobra.ExactArgs(1),
	RunE:  runArtist,
}

var releaseCmd = &cobra.Command{
	Use:   "release MBID",
	Short: "Show a release",
	Args:  cobra.ExactArgs(1),
	RunE:  runRelease,
}

func init() {
	rootCmd.AddCommand(artistsCmd)
	rootCmd.AddCommand(artistCmd)
	rootCmd.AddCommand(releaseCmd)

	artistsCmd.AddCommand(artistsListCmd)
	artistsCmd.AddCommand(artistsAddCmd)
	artistsCmd.AddCommand(artistsRemoveCmd)
	artistsCmd.AddCommand(artistsImportCmd)

	artistsImportCmd.Flags().Int("count", muspy.MaxImportCount, "Number of top artists to import (1-500)")
	artistsImportCmd.Flags().String("period", string(muspy.PeriodOverall), "Listening period to rank artists by")

	artistCmd.Flags().Bool("releases", false, "Also list the artist's releases")
}

func runArtistsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	artists, err := user.Artists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	out := cmd.OutOrStdout()
	for artist := range artists.Iter() {
		fmt.Fprintf(out, "%s  %s\n", artist.MBID, artist.ArtistInfo)
	}
	logger.Debug().Int("count", artists.Len()).Msg("Listed artists")
	return nil
}

func runArtistsAdd(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	artists, err := user.Artists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	out := cmd.OutOrStdout()
	var result *multierror.Error
	for _, mbid := range args {
		artist, err := artists.Add(ctx, mbid)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", mbid, describe(err)))
			continue
		}
		fmt.Fprintf(out, "✓ Subscribed to %s\n", artist.ArtistInfo)
	}

	return result.ErrorOrNil()
}

func runArtistsRemove(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	artists, err := user.Artists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	out := cmd.OutOrStdout()
	var result *multierror.Error
	for _, mbid := range args {
		artist, _ := artists.Get(mbid)
		if err := artists.Remove(ctx, mbid); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: %w", mbid, describe(err)))
			continue
		}
		fmt.Fprintf(out, "✓ Unsubscribed from %s\n", artist.ArtistInfo)
	}

	return result.ErrorOrNil()
}

func runArtistsImport(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	user, err := connect(ctx, cmd)
	if err != nil {
		return err
	}

	count, _ := cmd.Flags().GetInt("count")
	period, _ := cmd.Flags().GetString("period")

	err = user.ImportLastFM(ctx, muspy.ImportOptions{
		Username: args[0],
		Count:    count,
		Period:   muspy.ImportPeriod(period),
	})
	if err != nil {
		return fmt.Errorf("failed to import: %w", err)
	}

	artists, err := user.Artists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list artists: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Imported from last.fm user %s, now following %d artists\n", args[0], artists.Len())
	return nil
}

func runArtist(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	artist, err := client.Artist(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get artist: %w", describe(err))
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:      %s\n", artist.Name)
	fmt.Fprintf(out, "Sort name: %s\n", artist.SortName)
	if artist.Disambiguation != "" {
		fmt.Fprintf(out, "Note:      %s\n", artist.Disambiguation)
	}
	fmt.Fprintf(out, "MBID:      %s\n", artist.MBID)

	withReleases, _ := cmd.Flags().GetBool("releases")
	if !withReleases {
		return nil
	}

	releases, err := artist.Releases(ctx)
	if err != nil {
		return fmt.Errorf("failed to list releases: %w", err)
	}
	fmt.Fprintln(out)
	return printReleases(out, releases, cfg.OutputFormat, cfg.OutputWidth)
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	client, err := newClient()
	if err != nil {
		return err
	}

	release, err := client.Releases().Get(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get release: %w", describe(err))
	}

	printRelease(cmd.OutOrStdout(), *release)
	return nil
}

func printRelease(w io.Writer, r muspy.ReleaseInfo) {
	fmt.Fprintf(w, "Name:   %s\n", r.Name)
	fmt.Fprintf(w, "Artist: %s\n", r.Artist)
	fmt.Fprintf(w, "Type:   %s\n", r.Type)
	fmt.Fprintf(w, "Date:   %s\n", r.Date)
	fmt.Fprintf(w, "MBID:   %s\n", r.MBID)
}

// describe turns lookup failures into messages that name the likely cause
func describe(err error) error {
	switch {
	case errors.Is(err, muspy.ErrNotFound):
		return fmt.Errorf("not a valid MusicBrainz id: %w", err)
	case errors.Is(err, muspy.ErrGone):
		return fmt.Errorf("unknown to muspy: %w", err)
	case errors.Is(err, muspy.ErrDuplicateSubscription):
		return fmt.Errorf("already subscribed: %w", err)
	case errors.Is(err, muspy.ErrNotSubscribed):
		return fmt.Errorf("not subscribed: %w", err)
	default:
		return err
	}
}
