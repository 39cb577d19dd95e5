// Package notevault provides the authentication and session-lifecycle core of
// the NoteVault backend: JWT access tokens, rotating stateful refresh tokens,
// and a single-active-session-per-user policy backed by Redis.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// notevault is the public surface. It exposes [Engine], [Builder], [Config],
// and the sentinel errors handlers classify against. Token signing lives in
// the token subpackage, refresh-credential storage in credstore, password
// hashing in password. The Engine orchestrates those three; none of them
// import each other.
//
// # Session model
//
// Each user is in exactly one of two states: [StateNoSession] or
// [StateActiveSession]. Register and Login transition to ActiveSession by
// persisting the freshly issued refresh token as the single stored value for
// that user; overwriting on Login is the revocation point for every
// previously issued refresh token. Refresh rotates the stored value with a
// compare-and-swap, so a superseded token fails even while still
// cryptographically valid. Logout deletes the entry and reports a zero-effect
// delete as an error so stale logout attempts are observable.
package notevault
