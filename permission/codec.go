package permission

import "errors"

const (
	bitEdit = 1 << iota
	bitDelete
	bitManageUsers
	bitViewLogs
	bitGod

	knownBits = bitEdit | bitDelete | bitManageUsers | bitViewLogs | bitGod
)

// ErrUnknownBits is returned when a decoded byte carries bits this version
// does not define. Rejecting instead of masking keeps a downgraded reader
// from silently dropping grants written by a newer version.
var ErrUnknownBits = errors.New("permission set has unknown bits")

// Encode packs a Set into one byte for embedding in session records.
func Encode(s Set) byte {
	var b byte
	if s.Edit {
		b |= bitEdit
	}
	if s.Delete {
		b |= bitDelete
	}
	if s.ManageUsers {
		b |= bitManageUsers
	}
	if s.ViewLogs {
		b |= bitViewLogs
	}
	if s.God {
		b |= bitGod
	}
	return b
}

// Decode unpacks a byte produced by Encode.
func Decode(b byte) (Set, error) {
	if b&^knownBits != 0 {
		return Set{}, ErrUnknownBits
	}
	return Set{
		Edit:        b&bitEdit != 0,
		Delete:      b&bitDelete != 0,
		ManageUsers: b&bitManageUsers != 0,
		ViewLogs:    b&bitViewLogs != 0,
		God:         b&bitGod != 0,
	}, nil
}
