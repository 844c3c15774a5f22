// Package sessions owns launchable session descriptors.
//
// Ownership boundary:
// - descriptor shape and validation
// - environment contributions passed to start_session
// - the configured catalog a caller selects from
//
// Desktop-entry discovery is not handled here; descriptors come from config.
package sessions
