package wal

import (
	"os"
	"sync"
	"time"
)

type Config struct {
	Dir             string
	SegmentSize     int64
	SegmentDuration time.Duration
	Serializer      Serializer
	FlushInterval   time.Duration
}

type WAL struct {
	cfg        Config
	mu         sync.Mutex
	current    *segment
	segIndex   int
	lastRotate time.Time
	done       chan struct{}
	flushWG    sync.WaitGroup
}

func Open(cfg Config) (*WAL, error) {
	if cfg.Dir == "" {
		cfg.Dir = "./wal_data"
	}
	if cfg.SegmentSize == 0 {
		cfg.SegmentSize = 2 * 1024 * 1024
	}
	if cfg.SegmentDuration == 0 {
		cfg.SegmentDuration = 5 * time.Minute
	}
	if cfg.Serializer == nil {
		cfg.Serializer = BinarySerializer{}
	}

	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	idx, err := lastSegmentIndex(cfg.Dir)
	if err != nil {
		return nil, err
	}
	seg, err := openSegment(cfg.Dir, idx)
	if err != nil {
		return nil, err
	}

	w := &WAL{
		cfg:        cfg,
		current:    seg,
		segIndex:   idx,
		lastRotate: time.Now(),
		done:       make(chan struct{}),
	}
	if cfg.FlushInterval > 0 {
		w.flushWG.Add(1)
		go w.autoFlush()
	}
	return w, nil
}

func (w *WAL) Append(rec *Record) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := w.cfg.Serializer.Encode(rec)
	if err != nil {
		return err
	}
	if err := w.current.append(data); err != nil {
		return err
	}
	if w.current.offset >= w.cfg.SegmentSize ||
		time.Since(w.lastRotate) >= w.cfg.SegmentDuration {
		return w.rotate()
	}
	return nil
}

func (w *WAL) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current.sync()
}

func (w *WAL) Close() error {
	if w.cfg.FlushInterval > 0 {
		close(w.done)
		w.flushWG.Wait()
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.current.sync()
	return w.current.close()
}

// TruncateBefore drops whole segments whose records are all covered by
// a snapshot at seq. The current segment is never removed.
func (w *WAL) TruncateBefore(seq uint64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	files, err := listSegments(w.cfg.Dir)
	if err != nil {
		return err
	}
	current := segmentPath(w.cfg.Dir, w.segIndex)
	for _, path := range files {
		if path == current {
			continue
		}
		maxSeq, err := maxSeqInSegment(path, w.cfg.Serializer)
		if err != nil {
			continue
		}
		if maxSeq <= seq {
			_ = os.Remove(path)
		}
	}
	return nil
}

func (w *WAL) rotate() error {
	_ = w.current.sync()
	_ = w.current.close()
	w.segIndex++

	seg, err := openSegment(w.cfg.Dir, w.segIndex)
	if err != nil {
		return err
	}
	w.current = seg
	w.lastRotate = time.Now()
	return nil
}

func (w *WAL) autoFlush() {
	defer w.flushWG.Done()
	ticker := time.NewTicker(w.cfg.FlushInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			w.mu.Lock()
			_ = w.current.sync()
			w.mu.Unlock()
		}
	}
}
