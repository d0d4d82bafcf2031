package session

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const markerVersion1 = 1

var errMarkerEncoding = errors.New("invalid session marker encoding")

func encodeMarker(m *Marker) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte(markerVersion1)
	buf.WriteByte(m.Kind)

	if err := binary.Write(&buf, binary.BigEndian, m.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.BigEndian, m.ExpiresAt); err != nil {
		return nil, err
	}

	for _, field := range []string{m.SessionID, m.UserID, m.Username, m.Role} {
		if len(field) > 65535 {
			return nil, errMarkerEncoding
		}
		if err := binary.Write(&buf, binary.BigEndian, uint16(len(field))); err != nil {
			return nil, err
		}
		buf.WriteString(field)
	}

	return buf.Bytes(), nil
}

func decodeMarker(data []byte) (*Marker, error) {
	reader := bytes.NewReader(data)

	version, err := reader.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != markerVersion1 {
		return nil, errMarkerEncoding
	}

	m := &Marker{}
	if m.Kind, err = reader.ReadByte(); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &m.CreatedAt); err != nil {
		return nil, err
	}
	if err := binary.Read(reader, binary.BigEndian, &m.ExpiresAt); err != nil {
		return nil, err
	}

	fields := make([]string, 4)
	for i := range fields {
		var length uint16
		if err := binary.Read(reader, binary.BigEndian, &length); err != nil {
			return nil, err
		}
		raw := make([]byte, length)
		if _, err := io.ReadFull(reader, raw); err != nil {
			return nil, err
		}
		fields[i] = string(raw)
	}
	m.SessionID, m.UserID, m.Username, m.Role = fields[0], fields[1], fields[2], fields[3]

	return m, nil
}
