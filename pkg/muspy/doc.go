// Package muspy provides a client library for the muspy.com API.
//
// # Overview
//
// muspy notifies its users about new releases of the artists they follow.
// This package covers the whole API: account management, notification
// settings, artist subscriptions, and release listings. Release listings are
// paged by the service; the package pages through them on the caller's
// behalf.
//
// # Installation
//
//	go get github.com/jfmyers9/muspy/pkg/muspy
//
// # Quick Start
//
// Connect with the credentials of a muspy account:
//
//	import "github.com/jfmyers9/muspy/pkg/muspy"
//
//	user, err := muspy.Connect(ctx, muspy.Config{
//	    Email:    "me@example.com",
//	    Password: "secret",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # Subscriptions
//
// The subscribed artists behave like a set keyed by MusicBrainz id:
//
//	artists, err := user.Artists(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if _, err := artists.Add(ctx, "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"); err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(artists.Len(), artists.Contains("b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d"))
//
// Adding an artist twice fails with ErrDuplicateSubscription and removing an
// artist that is not subscribed fails with ErrNotSubscribed. Neither sends a
// request.
//
// # Releases
//
// Artist.Releases pages through every release of an artist once and keeps
// the result. User.Releases walks all subscribed artists lazily:
//
//	for release, err := range user.Releases(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(release.Date, release.Artist.Name, release.Name)
//	}
//
// For raw access use the services:
//
//	client, _ := muspy.NewClient(muspy.Config{})
//	releases, err := client.Releases().ListAll(ctx, muspy.ReleaseQuery{
//	    ArtistID: "b10bbbfc-cf9e-42e0-be17-e2c3e1d2600d",
//	})
//
// # Notification Settings
//
//	user.Settings.Live = false
//	user.Settings.Remix = false
//	if err := user.Save(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Save submits only the flags that were changed locally.
//
// # Error Handling
//
// Every error can be classified with errors.Is:
//
//	_, err := client.Artists().Get(ctx, mbid)
//	switch {
//	case errors.Is(err, muspy.ErrNotFound):
//	    // malformed id
//	case errors.Is(err, muspy.ErrGone):
//	    // no such artist
//	case errors.Is(err, muspy.ErrAuthenticationFailed):
//	    // bad credentials
//	}
//
// *APIError carries the status code and the diagnostic text of the service,
// *TransportError wraps connection failures, and *ValidationError reports
// input rejected before any request was sent. Nothing is retried.
//
// # Configuration
//
//	client, err := muspy.NewClient(muspy.Config{
//	    Email:             "me@example.com",
//	    Password:          "secret",
//	    Timeout:           10 * time.Second,
//	    RequestsPerSecond: 2,
//	    Logger:            myLogger, // Implements muspy.Logger interface
//	})
//
// # Concurrency
//
// All calls block until their requests complete. The package starts no
// goroutines. Mutating operations on one User or ArtistList must not run
// concurrently.
//
// # muspy API Documentation
//
// https://github.com/alexkay/muspy/tree/master/api
package muspy
