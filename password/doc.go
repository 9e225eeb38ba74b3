// Package password implements argon2id key derivation for credential
// provisioning and verification.
package password
