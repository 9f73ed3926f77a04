// Package tasks runs playlist transfers in the background with progress reporting.
//
// # Core Operations
//
//  1. [Engine.Run] : one transfer, start to finish
//     - Acquires (and refreshes) both platform credentials
//     - Enumerates the source playlist
//     - Matches and writes each track in order, pacing every few tracks
//     - Publishes PROGRESS snapshots to the status store and ends in SUCCESS or FAILURE
//
//  2. [Dispatcher] : the worker pool in front of the engine
//     - [Dispatcher.Submit] validates a request, stores it as PENDING and enqueues it without blocking
//     - A fixed number of workers each run one job at a time
//     - [Dispatcher.Shutdown] stops intake and fails whatever is still queued
//
// # Progress Reporting
//
// Besides status store snapshots, the engine emits [ProgressUpdate] values on an optional channel
// for the CLI. Updates use select with default so a slow reader never stalls a transfer.
package tasks
