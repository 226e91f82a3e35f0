// Package velo is a minimal-overhead HTTP routing and dispatch core.
//
// Velo maps an incoming (method, path) pair to a handler, threads the
// request through middleware, validates structured input against schemas,
// and converts the handler result into a wire response. Routing is
// two-tier: a precompiled index answers parameter-free paths in O(1), and
// a prefix tree resolves dynamic patterns with static-over-parameter-over-
// wildcard priority. Every route is compiled at registration into a single
// execution closure specialized for its shape, so the per-request hot path
// carries no strategy branching.
//
// A velo.App implements http.Handler; serving, shutdown, and TLS belong to
// the caller:
//
//	app := velo.New(
//	    velo.WithMiddleware(middlewares.RequestID()),
//	    velo.WithHandlers(handlers.NewUsers(repo)),
//	)
//	http.ListenAndServe(":8080", app)
package velo
