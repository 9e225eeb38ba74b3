package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/gallerium/sessionguard/permission"
)

const sessionFormatVersionCurrent = 1

// Encode serializes a session for storage. Layout (version 1):
//
//	[1] format version
//	[1] username length, [n] username
//	[1] csrf token length, [n] csrf token
//	[1] permission byte
//	[8] created-at unix, big endian
//	[8] expires-at unix, big endian
//
// The session ID is carried by the storage key, not the value.
func Encode(s *Session) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(sessionFormatVersionCurrent)

	if len(s.Username) > 255 {
		return nil, errors.New("username too long")
	}
	buf.WriteByte(byte(len(s.Username)))
	buf.WriteString(s.Username)

	if len(s.CSRFToken) > 255 {
		return nil, errors.New("csrf token too long")
	}
	buf.WriteByte(byte(len(s.CSRFToken)))
	buf.WriteString(s.CSRFToken)

	buf.WriteByte(permission.Encode(s.Permissions))

	if err := binary.Write(&buf, binary.BigEndian, s.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, s.ExpiresAt); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Decode parses a record produced by Encode. The returned session has an
// empty ID; the store fills it in from the key it read.
func Decode(data []byte) (*Session, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != sessionFormatVersionCurrent {
		return nil, errors.New("unknown session format version")
	}

	username, err := readString(reader)
	if err != nil {
		return nil, err
	}
	csrfToken, err := readString(reader)
	if err != nil {
		return nil, err
	}

	permByte, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	perms, err := permission.Decode(permByte)
	if err != nil {
		return nil, err
	}

	var createdAt, expiresAt int64
	if err := binary.Read(reader, binary.BigEndian, &createdAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &expiresAt); err != nil {
		return nil, err
	}
	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in session record")
	}

	return &Session{
		Username:    username,
		CSRFToken:   csrfToken,
		Permissions: perms,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

func readString(reader *bytes.Reader) (string, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return "", err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return "", err
	}
	return string(raw), nil
}
