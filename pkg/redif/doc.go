// Package redif runs a single-threaded RESP server reactor.
//
// A Server owns one listening socket and every accepted connection. A
// poller goroutine waits on readiness notifications and relays them, in
// order, to the worker loop running on the goroutine that called Serve.
// The worker reads bytes into each connection's frame.Reader, passes every
// completed request value to the Handler and queues the encoded replies on
// the connection's frame.Writer.
//
// Handler calls are serialized by one lock, taken once per drained batch of
// requests. Callers that keep state shared with other goroutines can pass
// the lock guarding that state through Config.Lock.
//
// Basic usage:
//
//	h := redif.HandlerFunc(func(req resp.Value) (resp.Value, bool) {
//		return resp.StatusValue("PONG"), true
//	})
//	srv := redif.New(redif.Config{Addr: "127.0.0.1:4400"}, h)
//	if err := srv.Listen(); err != nil {
//		return err
//	}
//	return srv.Serve(ctx)
package redif
