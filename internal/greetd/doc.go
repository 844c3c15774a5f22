// Package greetd models the greetd session lifecycle as typed states.
//
// Each state type exposes only the operations greetd accepts in that
// state. A transition takes the connection out of the receiver and
// hands it to the returned state, so a consumed state cannot issue a
// second request:
//
//	Empty --CreateSession--> NeedAuthResponse | SessionCreated | ErrorEncountered
//	NeedAuthResponse --PostAuthMessageResponse--> NeedAuthResponse | SessionCreated | ErrorEncountered
//	SessionCreated --StartSession--> SessionStarted | ErrorEncountered
//	SessionCreated --CancelSession--> Empty
//	ErrorEncountered --CancelSession--> Empty
//
// SessionStarted is terminal. A transport failure closes the connection;
// callers start over from a freshly dialed Empty.
package greetd
