// Package transport defines the wire-level contract the hookhttp client
// delegates to, plus a default adapter backed by net/http.
//
// The client never touches sockets itself: it hands a fully-built Request to
// a Transport and interprets the Result. Custom adapters (test fakes,
// proxy-aware transports, recording transports) implement the Transport
// interface.
//
// A Result is a closed variant: exactly one of the Kind values, with the
// fields for that kind populated. Consumers must switch exhaustively and
// treat any unknown kind as a contract breach.
package transport
