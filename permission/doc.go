// Package permission defines the closed capability set used for
// authorization decisions and its single-byte wire codec.
//
// Authorization is fail-closed: a capability that is absent, or a name this
// version does not know, is denied. The God flag is the one override and
// grants everything.
package permission
