package muspy

import (
	"errors"
	"net/url"
	"regexp"
	"strconv"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// MaxReleaseLimit is the largest page the release listing accepts.
	MaxReleaseLimit = 100

	// MaxImportCount is the largest number of artists a last.fm import may
	// request.
	MaxImportCount = 500
)

// ImportPeriod selects the last.fm listening period an import examines.
type ImportPeriod string

// Periods accepted by the last.fm import.
const (
	PeriodOverall  ImportPeriod = "overall"
	Period12Months ImportPeriod = "12month"
	Period6Months  ImportPeriod = "6month"
	Period3Months  ImportPeriod = "3month"
	Period7Days    ImportPeriod = "7day"
)

// ReleaseQuery selects releases. All filters are optional and independent;
// the service rejects combinations it does not support.
type ReleaseQuery struct {
	UserID   string // Apply this user's release type preferences
	ArtistID string // Only releases of this artist MBID
	Since    string // Only releases after this release MBID
	Limit    int    // Page size, 0 for the service default
	Offset   int    // Index of the first release returned
}

// Validate checks the query bounds.
func (q ReleaseQuery) Validate() error {
	return validationError(validation.ValidateStruct(&q,
		validation.Field(&q.Limit, validation.Min(0), validation.Max(MaxReleaseLimit)),
		validation.Field(&q.Offset, validation.Min(0)),
	))
}

func (q ReleaseQuery) path() string {
	if q.UserID == "" {
		return "/releases"
	}
	return "/releases/" + url.PathEscape(q.UserID)
}

func (q ReleaseQuery) params() url.Values {
	params := url.Values{}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 || q.Limit > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.ArtistID != "" {
		params.Set("mbid", q.ArtistID)
	}
	if q.Since != "" {
		params.Set("since", q.Since)
	}
	return params
}

// ImportOptions configures an import of artists from a last.fm profile.
type ImportOptions struct {
	Username string       // last.fm username, required
	Count    int          // Number of top artists to import, 0 for MaxImportCount
	Period   ImportPeriod // Listening period, empty for PeriodOverall
}

func (o ImportOptions) withDefaults() ImportOptions {
	if o.Count == 0 {
		o.Count = MaxImportCount
	}
	if o.Period == "" {
		o.Period = PeriodOverall
	}
	return o
}

// Validate checks the options after defaults are applied.
func (o ImportOptions) Validate() error {
	o = o.withDefaults()
	return validationError(validation.ValidateStruct(&o,
		validation.Field(&o.Username, validation.Required),
		validation.Field(&o.Count, validation.Min(1), validation.Max(MaxImportCount)),
		validation.Field(&o.Period, validation.In(
			PeriodOverall, Period12Months, Period6Months, Period3Months, Period7Days,
		)),
	))
}

func (o ImportOptions) form() url.Values {
	o = o.withDefaults()
	form := url.Values{}
	form.Set("username", o.Username)
	form.Set("count", strconv.Itoa(o.Count))
	form.Set("period", string(o.Period))
	return form
}

// UserUpdate lists the profile fields an update may change. Nil fields are
// left untouched on the service.
type UserUpdate struct {
	Email       *string
	Notify      *bool
	Album       *bool
	Single      *bool
	EP          *bool
	Live        *bool
	Compilation *bool
	Remix       *bool
	Other       *bool
}

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+$`)

var (
	errInvalidEmail  = errors.New("must be an email address")
	errEmptyPassword = errors.New("must not be empty")
)

// Validate rejects empty updates and malformed email addresses.
func (u UserUpdate) Validate() error {
	if u.IsEmpty() {
		return &ValidationError{Err: errors.New("no fields to update")}
	}
	return validationError(validation.ValidateStruct(&u,
		validation.Field(&u.Email, validation.NilOrNotEmpty, validation.Match(emailPattern)),
	))
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return len(u.form()) == 0
}

func (u UserUpdate) form() url.Values {
	form := url.Values{}
	if u.Email != nil {
		form.Set("email", *u.Email)
	}
	setFlag(form, "notify", u.Notify)
	setFlag(form, "notify_album", u.Album)
	setFlag(form, "notify_single", u.Single)
	setFlag(form, "notify_ep", u.EP)
	setFlag(form, "notify_live", u.Live)
	setFlag(form, "notify_compilation", u.Compilation)
	setFlag(form, "notify_remix", u.Remix)
	setFlag(form, "notify_other", u.Other)
	return form
}

// Diff returns the update that turns remote into local. Only differing flags
// are set.
func Diff(remote, local NotifySettings) UserUpdate {
	var u UserUpdate
	r, l, dst := remote.flags(), local.flags(), u.flags()
	for i := range dst {
		if *r[i] != *l[i] {
			v := *l[i]
			*dst[i] = &v
		}
	}
	return u
}

// flags lists the settings in a fixed order shared with UserUpdate.flags.
func (s *NotifySettings) flags() []*bool {
	return []*bool{&s.Notify, &s.Album, &s.Single, &s.EP, &s.Live, &s.Compilation, &s.Remix, &s.Other}
}

func (u *UserUpdate) flags() []**bool {
	return []**bool{&u.Notify, &u.Album, &u.Single, &u.EP, &u.Live, &u.Compilation, &u.Remix, &u.Other}
}

func setFlag(form url.Values, key string, v *bool) {
	if v == nil {
		return
	}
	if *v {
		form.Set(key, "1")
	} else {
		form.Set(key, "0")
	}
}

// validationError wraps an ozzo-validation result.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) == 1 {
		for field, fieldErr := range errs {
			return &ValidationError{Field: field, Err: fieldErr}
		}
	}
	return &ValidationError{Err: err}
}
