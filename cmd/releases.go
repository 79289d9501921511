/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/jfmyers9/muspy/internal/export"
	"github.com/jfmyers9/muspy/pkg/muspy"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
)

// releasesCmd represents the releases command
var releasesCmd = &cobra.Command{
	Use:   "releases",
	Short: "List releases of the artists you follow",
	Long: `List releases from muspy.

By default the releases of every subscribed artist are listed, artist by
artist. With --artist only that artist's releases are listed and no login
is needed. With --mine muspy filters the releases by your notification
settings.

The output format can be customized in ~/.config/muspy/config.yaml
using a Go template. Available fields: .Name, .Artist, .Type, .Date, .MBID, .ArtistMBID

With --export the releases are also written to a SQLite file.`,
	Args: cobra.NoArgs,
	RunE: runReleases,
}

func init() {
	rootCmd.AddCommand(releasesCmd)

	releasesCmd.Flags().String("artist", "", "Only list releases of this artist mbid")
	releasesCmd.Flags().Bool("mine", false, "Let muspy filter by your notification settings")
	releasesCmd.Flags().String("since", "", "Only list releases after this release mbid (with --mine or --artist)")
	// Add format flag to override config
	releasesCmd.Flags().StringP("format", "f", "", "Output format template (overrides config)")
	// Add width flag to set fixed output width
	releasesCmd.Flags().IntP("width", "w", 0, "Fixed output width (0=disabled, overrides config)")
	releasesCmd.Flags().String("export", "", "Also write the releases to this SQLite file")
	releasesCmd.Flags().Duration("prune", 0, "With --export, drop releases exported longer ago than this")
}

// releaseView is the data available to output templates
type releaseView struct {
	Name       string
	Artist     string
	Type       string
	Date       string
	MBID       string
	ArtistMBID string
}

func newReleaseView(r muspy.ReleaseInfo) releaseView {
	date := r.Date
	if date == "" {
		date = "????-??-??"
	}
	return releaseView{
		Name:       r.Name,
		Artist:     r.Artist.String(),
		Type:       string(r.Type),
		Date:       date,
		MBID:       r.MBID,
		ArtistMBID: r.Artist.MBID,
	}
}

func runReleases(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	artistID, _ := cmd.Flags().GetString("artist")
	mine, _ := cmd.Flags().GetBool("mine")
	since, _ := cmd.Flags().GetString("since")

	// Check for format flag override
	if format, _ := cmd.Flags().GetString("format"); format != "" {
		cfg.OutputFormat = format
	}
	width, _ := cmd.Flags().GetInt("width")
	if width == 0 {
		width = cfg.OutputWidth
	}

	// Parse the template before any request
	tmpl, err := parseFormat(cfg.OutputFormat)
	if err != nil {
		return err
	}

	var releases []muspy.ReleaseInfo
	switch {
	case artistID != "":
		client, err := newClient()
		if err != nil {
			return err
		}
		releases, err = client.Releases().ListAll(ctx, muspy.ReleaseQuery{ArtistID: artistID, Since: since})
		if err != nil {
			return fmt.Errorf("failed to list releases: %w", describe(err))
		}

	case mine:
		user, err := connect(ctx, cmd)
		if err != nil {
			return err
		}
		releases, err = user.FilteredReleases(ctx, since)
		if err != nil {
			return fmt.Errorf("failed to list releases: %w", err)
		}

	default:
		if since != "" {
			return fmt.Errorf("--since needs --mine or --artist")
		}
		user, err := connect(ctx, cmd)
		if err != nil {
			return err
		}
		for release, err := range user.Releases(ctx) {
			if err != nil {
				return fmt.Errorf("failed to list releases: %w", err)
			}
			releases = append(releases, release)
		}
	}

	logger.Debug().Int("count", len(releases)).Msg("Fetched releases")

	if err := writeReleases(cmd.OutOrStdout(), releases, tmpl, width); err != nil {
		return err
	}

	exportPath, _ := cmd.Flags().GetString("export")
	if exportPath == "" {
		return nil
	}
	prune, _ := cmd.Flags().GetDuration("prune")
	return exportReleases(cmd, exportPath, releases, prune)
}

// exportReleases writes releases to the SQLite file at path
func exportReleases(cmd *cobra.Command, path string, releases []muspy.ReleaseInfo, prune time.Duration) error {
	store, err := export.NewStore(path)
	if err != nil {
		return fmt.Errorf("failed to open export: %w", err)
	}
	defer func() { _ = store.Close() }()

	ctx := cmd.Context()
	if err := store.AddReleases(ctx, releases); err != nil {
		return fmt.Errorf("failed to export releases: %w", err)
	}

	if prune > 0 {
		deleted, err := store.Cleanup(ctx, prune)
		if err != nil {
			return fmt.Errorf("failed to prune export: %w", err)
		}
		logger.Debug().Int64("deleted", deleted).Msg("Pruned export")
	}

	total, err := store.Count(ctx)
	if err != nil {
		return err
	}

	logger.Info().
		Str("path", path).
		Int("written", len(releases)).
		Int("total", total).
		Msg("Exported releases")
	return nil
}

// printReleases formats releases with the given template string
func printReleases(w io.Writer, releases []muspy.ReleaseInfo, format string, width int) error {
	tmpl, err := parseFormat(format)
	if err != nil {
		return err
	}
	return writeReleases(w, releases, tmpl, width)
}

func writeReleases(w io.Writer, releases []muspy.ReleaseInfo, tmpl *template.Template, width int) error {
	for _, r := range releases {
		line, err := formatRelease(tmpl, r)
		if err != nil {
			return fmt.Errorf("failed to format output: %w", err)
		}
		if width > 0 {
			line = padToWidth(line, width)
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

func parseFormat(format string) (*template.Template, error) {
	tmpl, err := template.New("output").Option("missingkey=error").Parse(format)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return tmpl, nil
}

// formatRelease applies the template to the release data
func formatRelease(tmpl *template.Template, r muspy.ReleaseInfo) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newReleaseView(r)); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		result := runewidth.Truncate(text, width-ellipsisWidth, "") + ellipsis

		// Wide runes can leave the result one column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}
