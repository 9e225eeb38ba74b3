// Package httpapi is the JSON surface over the engine: login and logout,
// identity recovery, password changes, user administration, and a
// Prometheus metrics endpoint. Routing uses httprouter; session and CSRF
// enforcement come from the middleware package.
package httpapi
