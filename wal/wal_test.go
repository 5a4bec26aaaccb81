package wal

import (
	"fmt"
	"os"
	"testing"
)

func TestWALAppendAndReplay(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}

	const n = 100
	for i := 0; i < n; i++ {
		rec := NewRecord(RecordPut, uint64(i+1), EncodeKV([]byte(fmt.Sprintf("key-%03d", i)), []byte("v")))
		if err := w.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
		if i%20 == 0 {
			_ = w.Sync()
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	count := 0
	lastSeq, err := Replay(dir, nil, func(rec *Record) error {
		if rec.Type != RecordPut {
			t.Fatalf("unexpected record type: %v", rec.Type)
		}
		key, _, err := DecodeKV(rec.Data)
		if err != nil {
			t.Fatalf("decode payload: %v", err)
		}
		want := fmt.Sprintf("key-%03d", count)
		if string(key) != want {
			t.Fatalf("expected key %q, got %q", want, key)
		}
		count++
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != n {
		t.Fatalf("expected %d records, got %d", n, count)
	}
	if lastSeq != n {
		t.Fatalf("expected last seq %d, got %d", n, lastSeq)
	}
}

func TestWALRotation(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, SegmentSize: 256})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	for i := 0; i < 50; i++ {
		rec := NewRecord(RecordPut, uint64(i+1), EncodeKV([]byte("key"), []byte("some-value-payload")))
		if err := w.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	files, _ := listSegments(dir)
	if len(files) < 2 {
		t.Fatalf("expected rotated segments, found %d", len(files))
	}

	// Replay must walk every segment in order.
	count := 0
	if _, err := Replay(dir, nil, func(*Record) error { count++; return nil }); err != nil {
		t.Fatalf("replay: %v", err)
	}
	if count != 50 {
		t.Fatalf("expected 50 records across segments, got %d", count)
	}
}

func TestWALReopenResumesLastSegment(t *testing.T) {
	dir := t.TempDir()

	w, _ := Open(Config{Dir: dir, SegmentSize: 128})
	for i := 0; i < 20; i++ {
		_ = w.Append(NewRecord(RecordPut, uint64(i+1), EncodeKV([]byte("k"), []byte("vvvvvvvvvv"))))
	}
	_ = w.Close()
	before, _ := listSegments(dir)

	w2, err := Open(Config{Dir: dir, SegmentSize: 1 << 20})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	_ = w2.Append(NewRecord(RecordPut, 21, EncodeKV([]byte("k"), []byte("v"))))
	_ = w2.Close()

	after, _ := listSegments(dir)
	if len(after) != len(before) {
		t.Fatalf("reopen should append to the last segment: %d -> %d files", len(before), len(after))
	}

	last, err := Replay(dir, nil, func(*Record) error { return nil })
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if last != 21 {
		t.Fatalf("expected last seq 21, got %d", last)
	}
}

func TestWALCRCIntegrity(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir})
	if err != nil {
		t.Fatal(err)
	}
	_ = w.Append(NewRecord(RecordPut, 1, EncodeKV([]byte("key"), []byte("valid-record"))))
	_ = w.Sync()
	_ = w.Close()

	files, _ := listSegments(dir)
	f, err := os.OpenFile(files[0], os.O_RDWR, 0)
	if err != nil {
		t.Fatal(err)
	}
	// Corrupt the body to break the CRC.
	_, _ = f.WriteAt([]byte{0xFF, 0xFF, 0xFF, 0xFF}, 10)
	f.Close()

	_, err = Replay(dir, nil, func(*Record) error {
		t.Fatal("expected corruption detection, but got a record")
		return nil
	})
	if err == nil {
		t.Fatal("expected crc mismatch error")
	}
}

func TestWALTornTailIsTolerated(t *testing.T) {
	dir := t.TempDir()

	w, _ := Open(Config{Dir: dir})
	_ = w.Append(NewRecord(RecordPut, 1, EncodeKV([]byte("a"), []byte("1"))))
	_ = w.Append(NewRecord(RecordPut, 2, EncodeKV([]byte("b"), []byte("2"))))
	_ = w.Close()

	// Chop a few bytes off the tail, as a crash mid-write would.
	files, _ := listSegments(dir)
	info, _ := os.Stat(files[len(files)-1])
	_ = os.Truncate(files[len(files)-1], info.Size()-3)

	count := 0
	last, err := Replay(dir, nil, func(*Record) error { count++; return nil })
	if err != nil {
		t.Fatalf("torn tail should not error: %v", err)
	}
	if count != 1 || last != 1 {
		t.Fatalf("expected 1 intact record, got %d (last seq %d)", count, last)
	}
}

func TestWALTruncateBefore(t *testing.T) {
	dir := t.TempDir()

	w, _ := Open(Config{Dir: dir, SegmentSize: 128})
	for i := 0; i < 30; i++ {
		_ = w.Append(NewRecord(RecordPut, uint64(i+1), EncodeKV([]byte("k"), []byte("vvvvvvvvvv"))))
	}
	before, _ := listSegments(dir)
	if len(before) < 3 {
		t.Fatalf("expected several segments, got %d", len(before))
	}

	if err := w.TruncateBefore(15); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	_ = w.Close()

	after, _ := listSegments(dir)
	if len(after) >= len(before) {
		t.Fatalf("expected segments to be dropped: %d -> %d", len(before), len(after))
	}

	// Remaining records must still replay cleanly and cover seq > 15.
	last, err := Replay(dir, nil, func(*Record) error { return nil })
	if err != nil {
		t.Fatalf("replay after truncate: %v", err)
	}
	if last != 30 {
		t.Fatalf("expected last seq 30, got %d", last)
	}
}

func TestWALProtoSerializer(t *testing.T) {
	dir := t.TempDir()

	w, err := Open(Config{Dir: dir, Serializer: ProtoSerializer{}})
	if err != nil {
		t.Fatalf("open wal: %v", err)
	}
	_ = w.Append(NewRecord(RecordPut, 1, EncodeKV([]byte("a"), []byte("1"))))
	_ = w.Append(NewRecord(RecordDelete, 2, EncodeKV([]byte("a"), nil)))
	_ = w.Close()

	var types []RecordType
	last, err := Replay(dir, ProtoSerializer{}, func(rec *Record) error {
		types = append(types, rec.Type)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if last != 2 || len(types) != 2 || types[0] != RecordPut || types[1] != RecordDelete {
		t.Fatalf("proto replay mismatch: last=%d types=%v", last, types)
	}
}

func TestEncodeDecodeKV(t *testing.T) {
	key, value, err := DecodeKV(EncodeKV([]byte("hello"), []byte("world")))
	if err != nil {
		t.Fatal(err)
	}
	if string(key) != "hello" || string(value) != "world" {
		t.Fatalf("round trip mismatch: %q / %q", key, value)
	}

	if _, _, err := DecodeKV([]byte{0, 0}); err == nil {
		t.Fatal("expected error on short payload")
	}
}
