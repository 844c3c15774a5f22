// Package login drives the greetd lifecycle one user answer at a time.
//
// A Builder holds the current greetd state and the question log, the
// ordered prompts and answers already given in this attempt. Each Submit
// feeds one answer into the state machine and reports an Outcome. Error
// responses are cancelled before they are reported, so the daemon never
// keeps a half-configured session.
package login
