package muspy

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
)

// Artist is an artist bound to a client. Its release list is fetched on
// first use and then kept for the lifetime of the value; there is no
// invalidation. Use Fresh to start over.
type Artist struct {
	ArtistInfo

	client *Client

	mu       sync.Mutex
	fetched  bool
	releases []ReleaseInfo
}

// NewArtist binds info to the client without any request.
func (c *Client) NewArtist(info ArtistInfo) *Artist {
	return &Artist{ArtistInfo: info, client: c}
}

// Artist looks up an artist and binds it to the client.
func (c *Client) Artist(ctx context.Context, mbid string) (*Artist, error) {
	info, err := c.Artists().Get(ctx, mbid)
	if err != nil {
		return nil, err
	}
	return c.NewArtist(*info), nil
}

// Releases returns every release of the artist. The first successful call
// pages through the release listing; later calls return the same releases
// without a request. A failed fetch is not remembered.
func (a *Artist) Releases(ctx context.Context) ([]ReleaseInfo, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.fetched {
		releases, err := a.client.Releases().ListAll(ctx, ReleaseQuery{ArtistID: a.MBID})
		if err != nil {
			return nil, err
		}
		a.releases = releases
		a.fetched = true
	}
	return slices.Clone(a.releases), nil
}

// Fresh returns a copy of the artist with an empty release cell.
func (a *Artist) Fresh() *Artist {
	return a.client.NewArtist(a.ArtistInfo)
}

// ArtistList is the set of artists a user is subscribed to. Changes are
// sent to the service first and applied locally only when the service
// accepted them.
//
// Iteration order is the order of the service listing, followed by artists
// added through this list.
type ArtistList struct {
	client *Client
	userID string

	mu      sync.RWMutex
	artists []*Artist
}

func loadArtistList(ctx context.Context, client *Client, userID string) (*ArtistList, error) {
	infos, err := client.Artists().ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}

	l := &ArtistList{client: client, userID: userID}
	for _, info := range infos {
		if l.index(info.MBID) >= 0 {
			continue
		}
		l.artists = append(l.artists, client.NewArtist(info))
	}
	return l, nil
}

// Len returns the number of subscribed artists.
func (l *ArtistList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.artists)
}

// Contains reports whether the artist with mbid is subscribed.
func (l *ArtistList) Contains(mbid string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.index(mbid) >= 0
}

// Get returns the subscribed artist with mbid.
func (l *ArtistList) Get(mbid string) (*Artist, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if i := l.index(mbid); i >= 0 {
		return l.artists[i], true
	}
	return nil, false
}

// All returns a snapshot of the subscribed artists.
func (l *ArtistList) All() []*Artist {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.artists)
}

// Iter iterates over a snapshot of the subscribed artists.
func (l *ArtistList) Iter() iter.Seq[*Artist] {
	return slices.Values(l.All())
}

// Add subscribes to the artist with mbid. The artist is looked up first so
// the list holds its full information.
//
// Returns ErrDuplicateSubscription without any request if the artist is
// already in the list.
func (l *ArtistList) Add(ctx context.Context, mbid string) (*Artist, error) {
	if l.Contains(mbid) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, mbid)
	}
	info, err := l.client.Artists().Get(ctx, mbid)
	if err != nil {
		return nil, err
	}
	return l.AddArtist(ctx, *info)
}

// AddArtist subscribes to an artist whose information is already known.
func (l *ArtistList) AddArtist(ctx context.Context, info ArtistInfo) (*Artist, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.index(info.MBID) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateSubscription, info.MBID)
	}
	if err := l.client.Artists().Subscribe(ctx, l.userID, info.MBID); err != nil {
		return nil, err
	}

	artist := l.client.NewArtist(info)
	l.artists = append(l.artists, artist)
	return artist, nil
}

// Remove unsubscribes from the artist with mbid.
//
// Returns ErrNotSubscribed without any request if the artist is not in the
// list.
func (l *ArtistList) Remove(ctx context.Context, mbid string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.index(mbid)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotSubscribed, mbid)
	}
	if err := l.client.Artists().Unsubscribe(ctx, l.userID, mbid); err != nil {
		return err
	}

	l.artists = slices.Delete(l.artists, i, i+1)
	return nil
}

// index returns the position of mbid or -1. Callers hold mu.
func (l *ArtistList) index(mbid string) int {
	return slices.IndexFunc(l.artists, func(a *Artist) bool {
		return a.MBID == mbid
	})
}
