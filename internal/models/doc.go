// Package models defines the domain types of the playlist transfer pipeline.
//
// Platform data:
//   - [Track] : an (artist, title) pair read from a source playlist
//   - [PlaylistRef] : a playlist on a platform; an empty ID on a destination means the default collection
//   - [Candidate] : a destination search hit chosen as the equivalent of a [Track]
//
// Authorization:
//   - [Credential] : OAuth tokens for one session on one platform
//
// Jobs:
//   - [TransferRequest] : what a caller submits
//   - [TransferJob] : the observable snapshot of a running or finished transfer
//   - [Result] : per-track outcomes of a completed job
//
// [CheckTransition] enforces the snapshot invariants every status store applies before a write.
package models
