// Package middleware provides net/http decorators for the request guard
// (session + CSRF) and per-capability authorization. Handlers read the
// authenticated identity from the request context.
package middleware
