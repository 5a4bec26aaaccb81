package wal

import (
	"encoding/binary"
	"errors"
	"hash/crc32"
)

var ErrCorruptRecord = errors.New("wal: corrupted record")

// frameHeaderSize = length(4) + CRC(4).
const frameHeaderSize = 8

// Serializer turns records into self-delimiting frames and back.
// Every frame starts with an 8-byte header: body length then CRC32
// of the body, both little-endian.
type Serializer interface {
	Encode(*Record) ([]byte, error)
	Decode([]byte) (*Record, error)
}

func frame(body []byte) []byte {
	out := make([]byte, frameHeaderSize+len(body))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(body)))
	binary.LittleEndian.PutUint32(out[4:8], crc32.ChecksumIEEE(body))
	copy(out[frameHeaderSize:], body)
	return out
}

func unframe(data []byte) ([]byte, error) {
	if len(data) < frameHeaderSize {
		return nil, ErrCorruptRecord
	}
	body := data[frameHeaderSize:]
	if binary.LittleEndian.Uint32(data[4:8]) != crc32.ChecksumIEEE(body) {
		return nil, ErrCorruptRecord
	}
	return body, nil
}

// BinarySerializer is the default record codec:
// body = [type:1][seq:8][time:8][payload].
type BinarySerializer struct{}

func (BinarySerializer) Encode(rec *Record) ([]byte, error) {
	body := make([]byte, 1+8+8+len(rec.Data))
	body[0] = byte(rec.Type)
	binary.BigEndian.PutUint64(body[1:9], rec.Seq)
	binary.BigEndian.PutUint64(body[9:17], uint64(rec.Time))
	copy(body[17:], rec.Data)
	return frame(body), nil
}

func (BinarySerializer) Decode(data []byte) (*Record, error) {
	body, err := unframe(data)
	if err != nil {
		return nil, err
	}
	if len(body) < 17 {
		return nil, ErrCorruptRecord
	}
	return &Record{
		Type: RecordType(body[0]),
		Seq:  binary.BigEndian.Uint64(body[1:9]),
		Time: int64(binary.BigEndian.Uint64(body[9:17])),
		Data: body[17:],
	}, nil
}
