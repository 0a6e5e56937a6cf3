// Package ratelimit implements the per-user fixed-window request limiter.
//
// A window is a Redis counter under prefix+identity. The first increment of a
// window sets its expiry; later increments never touch the TTL, so the window
// length is fixed at creation. Once the counter passes the configured maximum
// every further call is rejected until the key expires.
//
// By default INCR and EXPIRE are two round trips, as in the storefront's first
// deployment. If the process dies between them the key is left without a TTL
// and the identity stays locked out. Such windows are reported as Leaked.
// WithAtomicWindow runs both steps in one Lua script instead.
package ratelimit
