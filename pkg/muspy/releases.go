package muspy

import (
	"context"
	"fmt"
	"net/http"
)

// ReleaseService provides release lookups and listings.
type ReleaseService struct {
	client *Client
}

// Get returns a single release.
func (s *ReleaseService) Get(ctx context.Context, mbid string) (*ReleaseInfo, error) {
	var release ReleaseInfo
	err := s.client.callJSON(ctx, request{
		method: http.MethodGet,
		path:   joinPath("release", mbid),
	}, &release)
	if err != nil {
		return nil, err
	}
	return &release, nil
}

// List fetches one page of releases.
//
// When q.UserID is set and the client has credentials, the request is
// authenticated.
//
// Example:
//
//	page, err := client.Releases().List(ctx, muspy.ReleaseQuery{
//	    ArtistID: "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d",
//	    Limit:    20,
//	})
func (s *ReleaseService) List(ctx context.Context, q ReleaseQuery) (*Page, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	var releases []ReleaseInfo
	err := s.client.callJSON(ctx, request{
		method:       http.MethodGet,
		path:         q.path(),
		query:        q.params(),
		requiresAuth: q.UserID != "" && s.client.HasCredentials(),
	}, &releases)
	if err != nil {
		return nil, err
	}

	return &Page{Releases: releases, Limit: q.Limit, Offset: q.Offset}, nil
}

// ListAll returns every release matching q, in the order the service pages
// them, by requesting pages of MaxReleaseLimit until a short page arrives.
// q.Limit and q.Offset are ignored.
//
// The number of round trips is not bounded: a service that keeps answering
// full pages keeps ListAll requesting. Use ctx to bound the call.
//
// Any failed page aborts the listing; releases gathered before the failure
// are discarded.
func (s *ReleaseService) ListAll(ctx context.Context, q ReleaseQuery) ([]ReleaseInfo, error) {
	return paginate(ctx, MaxReleaseLimit, func(ctx context.Context, limit, offset int) ([]ReleaseInfo, error) {
		pq := q
		pq.Limit = limit
		pq.Offset = offset
		page, err := s.List(ctx, pq)
		if err != nil {
			return nil, err
		}
		return page.Releases, nil
	})
}

// pageFunc fetches limit releases starting at offset.
type pageFunc func(ctx context.Context, limit, offset int) ([]ReleaseInfo, error)

// paginate concatenates pages from fetch until a short page.
//
// Termination: limit > 0 is required, so every iteration either stops on a
// page with fewer than limit releases (an empty page included) or advances
// offset by len(page) >= limit >= 1.
func paginate(ctx context.Context, limit int, fetch pageFunc) ([]ReleaseInfo, error) {
	if limit <= 0 {
		return nil, &ValidationError{Field: "limit", Err: fmt.Errorf("must be positive, got %d", limit)}
	}

	var result []ReleaseInfo
	offset := 0
	for {
		page, err := fetch(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		result = append(result, page...)
		if len(page) == 0 || len(page) < limit {
			if result == nil {
				result = []ReleaseInfo{}
			}
			return result, nil
		}
		offset += len(page)
	}
}
