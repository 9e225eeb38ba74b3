// Package session stores authenticated sessions across two backends.
//
// The primary backend is Redis: persistent, shared across instances,
// authoritative while reachable. The fallback is a process-local map that
// exists so an administrative login keeps working through a primary outage.
// Dual composes the two; it owns the only mutable shared state in the
// subsystem and every path through it is safe under concurrent requests.
//
// Expiry is lazy: expired records are treated as absent when read, and an
// optional sweep bounds fallback memory.
package session
