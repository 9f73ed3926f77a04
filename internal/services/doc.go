// Package services implements the platform adapters of a transfer.
//
// # Adapters
//
// [SpotifyService] wraps github.com/zmb3/spotify/v2 and [YouTubeService] wraps the generated
// google.golang.org/api/youtube/v3 client. Both implement [Service]:
//   - [Source] : lazy, paginated playlist enumeration (50 items per page)
//   - [Searcher] : one search query per call
//   - [Writer] : add to a playlist, or to Liked Songs / liked videos when no playlist is given
//
// YouTube has no structured artist field, so video titles go through [ParseVideoTitle].
//
// # Authorization
//
// Services never see a token directly. [Factory.New] takes an [oauth2.TokenSource], normally
// backed by the credential manager, which is consulted on every request and refreshes expired
// credentials before they reach the platform. A per-platform [rate.Limiter] is shared by every
// service one Factory builds.
//
// # Errors
//
// Platform failures are mapped onto the shared taxonomy:
//   - 401 : [shared.ErrNotAuthenticated]
//   - 404, or 403 while reading a source playlist : [shared.ErrPlaylistNotFound]
//   - anything else, including timeouts : [shared.UpstreamError]
//
// [APIService] is a small client for a running server's /api/transfers endpoints.
package services
