// Package protocol owns the greetd IPC wire contract.
//
// Ownership boundary:
// - request/response tagged unions
// - JSON payload encoding with the "type" discriminator
// - framed read/write entry points (see frame)
package protocol
