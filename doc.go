// Package sessionguard is the session & authorization core of an
// admin-facing content application.
//
// It authenticates administrative users against a credential store, issues
// opaque sessions through a dual-backend store (Redis primary, process-local
// fallback), enforces a double-submit CSRF scheme, and gates privileged
// operations behind a closed capability set with a superuser override.
//
// The engine is deliberately availability-biased on durability and strict on
// enforcement: a primary-store outage may cost sessions a process restart,
// but authorization checks never loosen.
//
// Typical wiring:
//
//	engine, err := sessionguard.New().
//		WithRedis(rdb).
//		WithCredentialStore(credstore.NewRedisStore(rdb, "sg", 0)).
//		WithAuditSink(sessionguard.NewJSONWriterSink(os.Stdout)).
//		Build()
//	if err != nil { ... }
//	defer engine.Close()
//
//	if err := engine.Bootstrap(ctx); err != nil { ... }
//
// HTTP integration lives in the middleware and httpapi packages.
package sessionguard
