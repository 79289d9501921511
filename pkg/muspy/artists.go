package muspy

import (
	"context"
	"net/http"
)

// ArtistService provides artist lookups and subscription management.
type ArtistService struct {
	client *Client
}

// Get returns information about an artist.
//
// Returns an error matching ErrNotFound if mbid is malformed and ErrGone if
// no artist has that mbid.
func (s *ArtistService) Get(ctx context.Context, mbid string) (*ArtistInfo, error) {
	var artist ArtistInfo
	err := s.client.callJSON(ctx, request{
		method: http.MethodGet,
		path:   joinPath("artist", mbid),
	}, &artist)
	if err != nil {
		return nil, err
	}
	return &artist, nil
}

// ListSubscriptions returns the artists userID is subscribed to, in the
// order the service lists them.
func (s *ArtistService) ListSubscriptions(ctx context.Context, userID string) ([]ArtistInfo, error) {
	var artists []ArtistInfo
	err := s.client.callJSON(ctx, request{
		method:       http.MethodGet,
		path:         joinPath("artists", userID),
		requiresAuth: true,
	}, &artists)
	if err != nil {
		return nil, err
	}
	if artists == nil {
		artists = []ArtistInfo{}
	}
	return artists, nil
}

// Subscribe adds an artist to the subscriptions of userID. The service
// treats repeated subscriptions as a no-op.
func (s *ArtistService) Subscribe(ctx context.Context, userID, artistMBID string) error {
	_, err := s.client.call(ctx, request{
		method:       http.MethodPut,
		path:         joinPath("artists", userID, artistMBID),
		requiresAuth: true,
	})
	return err
}

// Unsubscribe removes an artist from the subscriptions of userID.
func (s *ArtistService) Unsubscribe(ctx context.Context, userID, artistMBID string) error {
	_, err := s.client.call(ctx, request{
		method:       http.MethodDelete,
		path:         joinPath("artists", userID, artistMBID),
		requiresAuth: true,
	})
	return err
}

// ImportLastFM subscribes userID to the top artists of a last.fm profile.
//
// Options are validated before any request is sent.
//
// Example:
//
//	err := client.Artists().ImportLastFM(ctx, user.UserID, muspy.ImportOptions{
//	    Username: "rj",
//	    Count:    50,
//	    Period:   muspy.Period12Months,
//	})
func (s *ArtistService) ImportLastFM(ctx context.Context, userID string, opts ImportOptions) error {
	if err := opts.Validate(); err != nil {
		return err
	}
	_, err := s.client.call(ctx, request{
		method:       http.MethodPut,
		path:         joinPath("artists", userID),
		form:         opts.form(),
		requiresAuth: true,
	})
	return err
}
