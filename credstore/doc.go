// Package credstore provides the Redis-backed refresh-credential store:
// one key per user holding the single currently valid refresh-token value,
// with the refresh lifetime as its TTL.
//
// # Architecture boundaries
//
// This package owns Redis key layout and the atomic rotation script. It does
// NOT parse JWTs or decide authentication outcomes; the Engine maps its
// sentinel errors onto the uniform unauthorized result.
package credstore
