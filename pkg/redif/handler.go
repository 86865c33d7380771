package redif

import "github.com/yndnr/redif-go/pkg/resp"

// Handler answers one decoded request. Returning ok == false sends nothing
// back to the client.
//
// Handle is never called concurrently for the same Server.
type Handler interface {
	Handle(req resp.Value) (reply resp.Value, ok bool)
}

// HandlerFunc adapts an ordinary function to the Handler interface.
type HandlerFunc func(req resp.Value) (resp.Value, bool)

// Handle calls f(req).
func (f HandlerFunc) Handle(req resp.Value) (resp.Value, bool) {
	return f(req)
}
