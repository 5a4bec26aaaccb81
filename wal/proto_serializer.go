package wal

import (
	"maple/wal/walpb"

	"google.golang.org/protobuf/proto"
)

// ProtoSerializer implements Serializer using Protobuf. It shares the
// frame header with BinarySerializer, so readers only differ in how
// they decode the body.
type ProtoSerializer struct{}

func (ProtoSerializer) Encode(rec *Record) ([]byte, error) {
	body, err := proto.Marshal(&walpb.PBRecord{
		Seq:  rec.Seq,
		Time: rec.Time,
		Data: rec.Data,
		Type: uint32(rec.Type),
	})
	if err != nil {
		return nil, err
	}
	return frame(body), nil
}

func (ProtoSerializer) Decode(data []byte) (*Record, error) {
	body, err := unframe(data)
	if err != nil {
		return nil, err
	}
	var pb walpb.PBRecord
	if err := proto.Unmarshal(body, &pb); err != nil {
		return nil, err
	}
	return &Record{
		Seq:  pb.Seq,
		Time: pb.Time,
		Data: pb.Data,
		Type: RecordType(pb.Type),
	}, nil
}
