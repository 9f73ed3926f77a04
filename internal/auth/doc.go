// Package auth owns OAuth credentials for the lifetime of a user session.
//
// The [Manager] hands out credentials that are guaranteed unexpired at the time of the call,
// refreshing them through golang.org/x/oauth2 when needed and writing the refreshed tokens
// back to its [Store]. Refreshes of the same (session, platform) credential are serialized:
// a caller that waited on another's refresh re-reads the store and adopts the new token
// instead of spending the refresh token a second time.
//
// Failures surface as authorization errors from the shared taxonomy:
//   - no credential stored : [shared.ErrNotAuthenticated]
//   - expired with no refresh token : [shared.ErrNoRefreshToken]
//   - provider rejected the refresh : [shared.ErrRefreshFailed]
package auth
