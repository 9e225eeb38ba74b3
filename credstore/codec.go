package credstore

import (
	"bytes"
	"errors"
	"io"

	"github.com/gallerium/sessionguard"
	"github.com/gallerium/sessionguard/permission"
)

const recordFormatVersionCurrent = 1

// encodeRecord serializes a credential record. Layout (version 1):
//
//	[1] format version
//	[1] username length, [n] username
//	[1] salt length, [n] salt
//	[1] hash length, [n] hash
//	[1] permission byte
func encodeRecord(record *sessionguard.CredentialRecord) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte(recordFormatVersionCurrent)

	if len(record.Username) == 0 || len(record.Username) > 255 {
		return nil, errors.New("invalid username length")
	}
	buf.WriteByte(byte(len(record.Username)))
	buf.WriteString(record.Username)

	if len(record.Salt) == 0 || len(record.Salt) > 255 {
		return nil, errors.New("invalid salt length")
	}
	buf.WriteByte(byte(len(record.Salt)))
	buf.Write(record.Salt)

	if len(record.PasswordHash) == 0 || len(record.PasswordHash) > 255 {
		return nil, errors.New("invalid hash length")
	}
	buf.WriteByte(byte(len(record.PasswordHash)))
	buf.Write(record.PasswordHash)

	buf.WriteByte(permission.Encode(record.Permissions))

	return buf.Bytes(), nil
}

func decodeRecord(data []byte) (*sessionguard.CredentialRecord, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != recordFormatVersionCurrent {
		return nil, errors.New("unknown credential record version")
	}

	username, err := readBytes(reader)
	if err != nil {
		return nil, err
	}
	salt, err := readBytes(reader)
	if err != nil {
		return nil, err
	}
	hash, err := readBytes(reader)
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
	if reader.Len() != 0 {
		return nil, errors.New("trailing bytes in credential record")
	}

	return &sessionguard.CredentialRecord{
		Username:     string(username),
		Salt:         salt,
		PasswordHash: hash,
		Permissions:  perms,
	}, nil
}

func readBytes(reader *bytes.Reader) ([]byte, error) {
	length, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	raw := make([]byte, length)
	if _, err := io.ReadFull(reader, raw); err != nil {
		return nil, err
	}
	return raw, nil
}
