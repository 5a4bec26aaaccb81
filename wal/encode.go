package wal

import "encoding/binary"

// EncodeKV packs a key/value pair into a record payload:
// [klen:4][key][value]. Delete records carry an empty value.
func EncodeKV(key, value []byte) []byte {
	buf := make([]byte, 4+len(key)+len(value))
	binary.BigEndian.PutUint32(buf[:4], uint32(len(key)))
	copy(buf[4:], key)
	copy(buf[4+len(key):], value)
	return buf
}

// DecodeKV unpacks a payload produced by EncodeKV.
func DecodeKV(data []byte) (key, value []byte, err error) {
	if len(data) < 4 {
		return nil, nil, ErrCorruptRecord
	}
	klen := binary.BigEndian.Uint32(data[:4])
	if uint32(len(data)-4) < klen {
		return nil, nil, ErrCorruptRecord
	}
	return data[4 : 4+klen], data[4+klen:], nil
}
