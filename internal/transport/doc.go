// Package transport exchanges single greetd request/response pairs.
//
// Ownership boundary:
// - connection parameters (GREETD_SOCK)
// - unix socket dial and framed exchange
// - in-memory mock daemon for demo mode and tests
//
// Exchanges are strictly one in flight; pipelining is not supported.
package transport
