package service

import (
	"context"
	"log"
	"time"

	"maple/snapshot"
)

// StartSnapshotJob periodically dumps the map and truncates WAL
// segments the dump has made redundant.
func (s *KVService) StartSnapshotJob(
	ctx context.Context,
	dir string,
	interval time.Duration,
) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := s.WriteSnapshot(dir); err != nil {
					log.Printf("[snapshot] write failed: %v", err)
				}
			}
		}
	}()
}

// WriteSnapshot dumps the current map state at the current sequence.
func (s *KVService) WriteSnapshot(dir string) error {
	s.mu.Lock()
	seq := s.seq.Current()
	w := &snapshot.Writer{Dir: dir}
	err := w.Write(seq, s.m)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	return s.wal.TruncateBefore(seq)
}
