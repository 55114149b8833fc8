// Package query implements a UDP responder for the GameSpy 4 style query
// protocol, reporting the status of a gridkit server to query clients.
//
// The Listener asks a ProviderFunc for the current Data on every request, so
// the server package can describe its state without the query package knowing
// about it.
package query
