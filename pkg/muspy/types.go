package muspy

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/araddon/dateparse"
)

// ReleaseType is the category tag of a release.
type ReleaseType string

// Release categories known to muspy.
const (
	ReleaseAlbum       ReleaseType = "Album"
	ReleaseSingle      ReleaseType = "Single"
	ReleaseEP          ReleaseType = "EP"
	ReleaseLive        ReleaseType = "Live"
	ReleaseRemix       ReleaseType = "Remix"
	ReleaseCompilation ReleaseType = "Compilation"
	ReleaseOther       ReleaseType = "Other"
)

// ArtistInfo describes an artist. MBID is the identity of an artist; two
// values with the same MBID name the same artist.
type ArtistInfo struct {
	MBID           string `json:"mbid"`
	Name           string `json:"name"`
	SortName       string `json:"sort_name"`
	Disambiguation string `json:"disambiguation"`
}

// UnmarshalJSON decodes an artist and defaults SortName to Name.
func (a *ArtistInfo) UnmarshalJSON(data []byte) error {
	type plain ArtistInfo
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	if p.SortName == "" {
		p.SortName = p.Name
	}
	*a = ArtistInfo(p)
	return nil
}

// String returns the display name, with the disambiguation note if any.
func (a ArtistInfo) String() string {
	if a.Disambiguation != "" {
		return fmt.Sprintf("%s (%s)", a.Name, a.Disambiguation)
	}
	return a.Name
}

// ReleaseInfo describes a release together with the artist it belongs to.
type ReleaseInfo struct {
	MBID   string      `json:"mbid"`
	Name   string      `json:"name"`
	Type   ReleaseType `json:"type"`
	Date   string      `json:"date"` // As sent by the service; may be partial ("2013", "2013-05")
	Artist ArtistInfo  `json:"artist"`
}

// ReleaseTime parses Date. Partial dates resolve to the first day of the
// period.
func (r ReleaseInfo) ReleaseTime() (time.Time, error) {
	if r.Date == "" {
		return time.Time{}, errors.New("muspy: release has no date")
	}
	t, err := dateparse.ParseIn(r.Date, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("muspy: invalid release date %q: %w", r.Date, err)
	}
	return t, nil
}

// NotifySettings are the per-category notification flags of an account.
type NotifySettings struct {
	Notify      bool // Master switch for e-mail notifications
	Album       bool
	Single      bool
	EP          bool
	Live        bool
	Compilation bool
	Remix       bool
	Other       bool
}

// UserInfo is an account profile.
type UserInfo struct {
	UserID   string
	Email    string
	Settings NotifySettings
}

// flag decodes JSON booleans sent either as true/false or as 1/0.
type flag bool

func (f *flag) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1", `"1"`, `"true"`:
		*f = true
	case "false", "0", `"0"`, `"false"`, "null":
		*f = false
	default:
		return fmt.Errorf("muspy: invalid flag value %s", data)
	}
	return nil
}

// userJSON is the wire representation of a user profile.
type userJSON struct {
	UserID            string `json:"userid"`
	Email             string `json:"email"`
	Notify            flag   `json:"notify"`
	NotifyAlbum       flag   `json:"notify_album"`
	NotifySingle      flag   `json:"notify_single"`
	NotifyEP          flag   `json:"notify_ep"`
	NotifyLive        flag   `json:"notify_live"`
	NotifyCompilation flag   `json:"notify_compilation"`
	NotifyRemix       flag   `json:"notify_remix"`
	NotifyOther       flag   `json:"notify_other"`
}

// UnmarshalJSON decodes the flat wire profile.
func (u *UserInfo) UnmarshalJSON(data []byte) error {
	var w userJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*u = UserInfo{
		UserID: w.UserID,
		Email:  w.Email,
		Settings: NotifySettings{
			Notify:      bool(w.Notify),
			Album:       bool(w.NotifyAlbum),
			Single:      bool(w.NotifySingle),
			EP:          bool(w.NotifyEP),
			Live:        bool(w.NotifyLive),
			Compilation: bool(w.NotifyCompilation),
			Remix:       bool(w.NotifyRemix),
			Other:       bool(w.NotifyOther),
		},
	}
	return nil
}

// Page is one response of the release listing endpoint.
type Page struct {
	Releases []ReleaseInfo
	Limit    int // Limit requested, 0 if the service default was used
	Offset   int // Offset requested
}

// Count returns the number of releases in the page.
func (p *Page) Count() int {
	return len(p.Releases)
}
