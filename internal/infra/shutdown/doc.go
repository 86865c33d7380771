// Package shutdown runs ordered cleanup when the process is asked to stop.
//
// A Handler waits for SIGINT, SIGTERM, a cancelled context or an explicit
// Trigger, then runs the registered hooks in reverse registration order
// under a shared timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(10*time.Second, shutdown.WithLogger(logger))
//	h.OnShutdown("storage", kv.Close)
//	err := h.Wait(ctx)
package shutdown
