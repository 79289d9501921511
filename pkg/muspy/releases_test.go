package muspy

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePages serves pages of the given sizes in order and records the
// requested offsets.
type fakePages struct {
	sizes   []int
	offsets []int
	fail    int // 1-based call number that fails, 0 for none
}

func (f *fakePages) fetch(_ context.Context, limit, offset int) ([]ReleaseInfo, error) {
	call := len(f.offsets)
	f.offsets = append(f.offsets, offset)
	if f.fail == call+1 {
		return nil, &APIError{StatusCode: http.StatusInternalServerError}
	}
	if call >= len(f.sizes) {
		return nil, fmt.Errorf("unexpected call %d", call+1)
	}
	page := make([]ReleaseInfo, f.sizes[call])
	for i := range page {
		page[i] = ReleaseInfo{MBID: strconv.Itoa(offset + i)}
	}
	return page, nil
}

func TestPaginate(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		sizes       []int
		wantCount   int
		wantOffsets []int
	}{
		{
			name:        "single short page",
			limit:       100,
			sizes:       []int{37},
			wantCount:   37,
			wantOffsets: []int{0},
		},
		{
			name:        "three pages",
			limit:       100,
			sizes:       []int{100, 100, 37},
			wantCount:   237,
			wantOffsets: []int{0, 100, 200},
		},
		{
			name:        "empty first page",
			limit:       100,
			sizes:       []int{0},
			wantCount:   0,
			wantOffsets: []int{0},
		},
		{
			name:        "exact multiple ends with empty page",
			limit:       10,
			sizes:       []int{10, 10, 0},
			wantCount:   20,
			wantOffsets: []int{0, 10, 20},
		},
		{
			name:        "page size one",
			limit:       1,
			sizes:       []int{1, 1, 1, 0},
			wantCount:   3,
			wantOffsets: []int{0, 1, 2, 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pages := &fakePages{sizes: tt.sizes}

			result, err := paginate(context.Background(), tt.limit, pages.fetch)
			require.NoError(t, err)
			require.NotNil(t, result)

			assert.Len(t, result, tt.wantCount)
			assert.Equal(t, tt.wantOffsets, pages.offsets)
			assert.Len(t, pages.offsets, len(tt.sizes), "one call per page")

			for i, release := range result {
				assert.Equal(t, strconv.Itoa(i), release.MBID, "releases keep page order")
			}
		})
	}
}

func TestPaginate_FullPagesThenShort(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d full pages", n), func(t *testing.T) {
			sizes := make([]int, 0, n+1)
			for i := 0; i < n; i++ {
				sizes = append(sizes, 7)
			}
			sizes = append(sizes, 3)
			pages := &fakePages{sizes: sizes}

			result, err := paginate(context.Background(), 7, pages.fetch)
			require.NoError(t, err)
			assert.Len(t, pages.offsets, n+1)
			assert.Len(t, result, n*7+3)
		})
	}
}

func TestPaginate_FailureDiscardsResults(t *testing.T) {
	pages := &fakePages{sizes: []int{100, 100, 100}, fail: 2}

	result, err := paginate(context.Background(), 100, pages.fetch)
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, errors.Is(err, ErrRemote))
	assert.Equal(t, []int{0, 100}, pages.offsets)
}

func TestPaginate_RejectsNonPositiveLimit(t *testing.T) {
	for _, limit := range []int{0, -1} {
		pages := &fakePages{sizes: []int{0}}

		_, err := paginate(context.Background(), limit, pages.fetch)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrValidation))
		assert.Empty(t, pages.offsets, "no page is fetched")
	}
}

func TestReleaseService_ListAll(t *testing.T) {
	sizes := []int{100, 100, 37}
	var calls int

	client, log := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		writeJSON(t, w, releaseJSON("abc-123", offset, sizes[calls]))
		calls++
	}))

	releases, err := client.Releases().ListAll(context.Background(), ReleaseQuery{ArtistID: "abc-123"})
	require.NoError(t, err)
	assert.Len(t, releases, 237)

	recorded := log.All()
	require.Len(t, recorded, 3)
	for i, wantOffset := range []string{"0", "100", "200"} {
		assert.Equal(t, "/releases", recorded[i].Path)
		assert.Equal(t, "100", recorded[i].Query.Get("limit"))
		assert.Equal(t, wantOffset, recorded[i].Query.Get("offset"))
		assert.Equal(t, "abc-123", recorded[i].Query.Get("mbid"))
	}

	assert.Equal(t, "release-0", releases[0].MBID)
	assert.Equal(t, "release-236", releases[236].MBID)
	assert.Equal(t, "abc-123", releases[236].Artist.MBID)
}

func TestReleaseService_ListAllForUser(t *testing.T) {
	client, log := newTestClient(t, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, releaseJSON("a", 0, 2))
	}))

	releases, err := client.Releases().ListAll(context.Background(), ReleaseQuery{
		UserID: testUserID,
		Since:  "release-9",
	})
	require.NoError(t, err)
	assert.Len(t, releases, 2)

	recorded := log.All()
	require.Len(t, recorded, 1)
	assert.Equal(t, "/releases/u1", recorded[0].Path)
	assert.Equal(t, "release-9", recorded[0].Query.Get("since"))
	assert.Equal(t, testEmail, recorded[0].User)
}

func TestReleaseService_ListValidation(t *testing.T) {
	tests := []struct {
		name  string
		query ReleaseQuery
		field string
	}{
		{name: "limit too large", query: ReleaseQuery{Limit: 101}, field: "Limit"},
		{name: "negative limit", query: ReleaseQuery{Limit: -1}, field: "Limit"},
		{name: "negative offset", query: ReleaseQuery{Offset: -5}, field: "Offset"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, log := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				writeJSON(t, w, []interface{}{})
			}))

			_, err := client.Releases().List(context.Background(), tt.query)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrValidation))

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, log.Len(), "validation happens before any request")
		})
	}
}

func TestReleaseService_ListPage(t *testing.T) {
	client, log := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, releaseJSON("a", 40, 20))
	}))

	page, err := client.Releases().List(context.Background(), ReleaseQuery{Limit: 20, Offset: 40})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Count())
	assert.Equal(t, 20, page.Limit)
	assert.Equal(t, 40, page.Offset)

	recorded := log.All()
	require.Len(t, recorded, 1)
	assert.Equal(t, "20", recorded[0].Query.Get("limit"))
	assert.Equal(t, "40", recorded[0].Query.Get("offset"))
	assert.Empty(t, recorded[0].User, "anonymous listing sends no credentials")
}

func TestReleaseService_Get(t *testing.T) {
	client, log := newTestClient(t, false, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, releaseJSON("artist-1", 5, 1)[0])
	}))

	release, err := client.Releases().Get(context.Background(), "release-5")
	require.NoError(t, err)
	assert.Equal(t, "release-5", release.MBID)
	assert.Equal(t, ReleaseAlbum, release.Type)
	assert.Equal(t, "artist-1", release.Artist.MBID)
	assert.Equal(t, 1, log.Count(http.MethodGet, "/release/release-5"))
}
