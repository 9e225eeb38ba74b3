// Package audit implements the engine's asynchronous audit pipeline.
//
// The engine emits one Event per security-relevant transition (login,
// logout, CSRF rejection, permission denial, account mutation). A Dispatcher
// decouples the hot request path from the sink: events cross a buffered
// channel and a single worker goroutine forwards them. Durable storage of
// events is out of scope; sinks are the integration boundary.
package audit
