// SPDX-License-Identifier: MIT
//
// Package transport publishes magnitude snapshots to external visualizer
// clients. Implementations must be safe for concurrent Send calls and must
// never block the caller beyond a bounded write.
package transport

// Transport sends one magnitude snapshot per call. Implementations are
// expected to rate limit internally and drop frames rather than queue them;
// the next snapshot supersedes a dropped one.
type Transport interface {
	Send(snapshot []byte) error
	Close() error
}

// SnapshotSource provides the most recent magnitude snapshot, or nil when
// no tone session is active. The tone engine implements this.
type SnapshotSource interface {
	ReadMagnitudes() []byte
}
