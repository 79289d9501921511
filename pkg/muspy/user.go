package muspy

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"sync"
)

// User is an authenticated muspy account.
//
// Settings may be changed freely and are sent with Save. Mutating methods
// (Save, Delete, ImportLastFM and the ArtistList mutations) each read and
// then write remote state and must not run concurrently on the same User.
type User struct {
	Settings NotifySettings

	client *Client
	userID string
	email  string

	// base holds the settings as last received from the service. Save only
	// submits flags that differ from it.
	base NotifySettings

	mu      sync.Mutex
	artists *ArtistList
}

// Connect fetches the profile that belongs to cfg.Email and cfg.Password.
//
// Returns an error matching ErrAuthenticationFailed if the service rejects
// the credentials.
//
// Example:
//
//	user, err := muspy.Connect(ctx, muspy.Config{
//	    Email:    "me@example.com",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(user.ID(), user.Settings.Album)
func Connect(ctx context.Context, cfg Config) (*User, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return client.Connect(ctx)
}

// Register creates an account for cfg.Email and cfg.Password and connects
// to it. When sendActivation is set the service mails an activation link.
func Register(ctx context.Context, cfg Config, sendActivation bool) (*User, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}
	if !client.HasCredentials() {
		return nil, ErrNoCredentials
	}
	if err := client.Users().Create(ctx, cfg.Email, cfg.Password, sendActivation); err != nil {
		return nil, err
	}
	return client.Connect(ctx)
}

// Connect fetches the profile of the client's credentials.
func (c *Client) Connect(ctx context.Context) (*User, error) {
	if !c.HasCredentials() {
		return nil, ErrNoCredentials
	}

	info, err := c.Users().Get(ctx, "")
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(info.Email, c.email) {
		return nil, fmt.Errorf("%w: requested %q, received %q", ErrIdentityMismatch, c.email, info.Email)
	}

	return &User{
		Settings: info.Settings,
		client:   c,
		userID:   info.UserID,
		email:    info.Email,
		base:     info.Settings,
	}, nil
}

// ID returns the muspy user id.
func (u *User) ID() string {
	return u.userID
}

// Email returns the account email.
func (u *User) Email() string {
	return u.email
}

// Client returns the client the user is bound to.
func (u *User) Client() *Client {
	return u.client
}

// String returns a short description without credentials.
func (u *User) String() string {
	return fmt.Sprintf("muspy user %s <%s>", u.userID, u.email)
}

// Save sends the notification flags changed in Settings since they were
// last received. The remote profile is fetched first and only flags that
// were changed locally and differ remotely are submitted. Without local
// changes Save makes no request at all; when every local change is already
// present remotely no update request is made.
//
// The fetch and the update are not atomic against concurrent changes of the
// same account elsewhere.
func (u *User) Save(ctx context.Context) error {
	if Diff(u.base, u.Settings).IsEmpty() {
		return nil
	}

	remote, err := u.client.Users().Get(ctx, u.userID)
	if err != nil {
		return err
	}

	update := Diff(remote.Settings, u.Settings)
	base, local, pending := u.base.flags(), u.Settings.flags(), update.flags()
	for i := range pending {
		if *base[i] == *local[i] {
			*pending[i] = nil
		}
	}
	if update.IsEmpty() {
		u.Settings = remote.Settings
		u.base = remote.Settings
		return nil
	}

	updated, err := u.client.Users().Update(ctx, u.userID, update)
	if err != nil {
		return err
	}
	u.Settings = updated.Settings
	u.base = updated.Settings
	return nil
}

// Delete removes the account. This cannot be undone and asks for no
// confirmation.
func (u *User) Delete(ctx context.Context) error {
	return u.client.Users().Delete(ctx, u.userID)
}

// Artists returns the subscribed artists. The list is fetched on first use
// and kept in sync with changes made through it.
func (u *User) Artists(ctx context.Context) (*ArtistList, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if u.artists == nil {
		list, err := loadArtistList(ctx, u.client, u.userID)
		if err != nil {
			return nil, err
		}
		u.artists = list
	}
	return u.artists, nil
}

// ReloadArtists replaces the artist list with a new listing from the
// service.
func (u *User) ReloadArtists(ctx context.Context) (*ArtistList, error) {
	u.mu.Lock()
	u.artists = nil
	u.mu.Unlock()
	return u.Artists(ctx)
}

// ImportLastFM subscribes to the top artists of a last.fm profile. The next
// call to Artists lists the subscriptions again.
func (u *User) ImportLastFM(ctx context.Context, opts ImportOptions) error {
	if err := u.client.Artists().ImportLastFM(ctx, u.userID, opts); err != nil {
		return err
	}
	u.mu.Lock()
	u.artists = nil
	u.mu.Unlock()
	return nil
}

// Releases iterates over the releases of every subscribed artist, artist by
// artist in subscription order. Each artist's releases are paged in when the
// iteration reaches it, one artist after the other, so a full traversal can
// take a long time. Iteration stops after the first error.
//
// Example:
//
//	for release, err := range user.Releases(ctx) {
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Println(release.Artist.Name, release.Name)
//	}
func (u *User) Releases(ctx context.Context) iter.Seq2[ReleaseInfo, error] {
	return func(yield func(ReleaseInfo, error) bool) {
		artists, err := u.Artists(ctx)
		if err != nil {
			yield(ReleaseInfo{}, err)
			return
		}
		for artist := range artists.Iter() {
			releases, err := artist.Releases(ctx)
			if err != nil {
				yield(ReleaseInfo{}, err)
				return
			}
			for _, release := range releases {
				if !yield(release, nil) {
					return
				}
			}
		}
	}
}

// FilteredReleases returns the releases of all subscribed artists that
// match the user's notification settings, as selected by the service. When
// since is set only releases after that release are returned.
func (u *User) FilteredReleases(ctx context.Context, since string) ([]ReleaseInfo, error) {
	return u.client.Releases().ListAll(ctx, ReleaseQuery{UserID: u.userID, Since: since})
}
