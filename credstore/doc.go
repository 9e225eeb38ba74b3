// Package credstore provides sessionguard.CredentialStore implementations:
// a Redis-backed store for deployments and an in-process store for tests.
package credstore
