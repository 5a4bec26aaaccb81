package grpcserver

import (
	"context"
	"log"

	"google.golang.org/grpc"

	pb "maple/api/pb"
	"maple/service"
)

// Server adapts KVService to gRPC.
type Server struct {
	pb.UnimplementedKVServer
	svc *service.KVService
}

func NewServer(svc *service.KVService) *Server {
	return &Server{svc: svc}
}

// -------------------- Commands --------------------

func (s *Server) Put(
	ctx context.Context,
	req *pb.PutRequest,
) (*pb.PutResponse, error) {
	seq, err := s.svc.Put(string(req.Key), req.Value)
	if err != nil {
		return nil, err
	}

	log.Printf("[gRPC] Put key=%q len=%d seq=%d", req.Key, len(req.Value), seq)

	return &pb.PutResponse{
		Status: "ok",
		SeqId:  seq,
	}, nil
}

func (s *Server) Delete(
	ctx context.Context,
	req *pb.DeleteRequest,
) (*pb.DeleteResponse, error) {
	n, seq, err := s.svc.Delete(string(req.Key))
	if err != nil {
		return nil, err
	}

	log.Printf("[gRPC] Delete key=%q removed=%d seq=%d", req.Key, n, seq)

	return &pb.DeleteResponse{
		Removed: uint64(n),
		SeqId:   seq,
	}, nil
}

// -------------------- Queries --------------------

func (s *Server) Get(
	ctx context.Context,
	req *pb.GetRequest,
) (*pb.GetResponse, error) {
	value, found := s.svc.Get(string(req.Key))

	return &pb.GetResponse{
		Found: found,
		Value: value,
	}, nil
}

// Scan streams entries in ascending key order. A zero limit streams
// everything. Entries are collected before streaming so a slow client
// never holds up writers.
func (s *Server) Scan(
	req *pb.ScanRequest,
	stream grpc.ServerStreamingServer[pb.Entry],
) error {
	var entries []*pb.Entry

	s.svc.Scan(func(key string, value []byte) bool {
		if req.Limit > 0 && uint64(len(entries)) >= req.Limit {
			return false
		}
		entries = append(entries, &pb.Entry{
			Key:   []byte(key),
			Value: append([]byte(nil), value...),
		})
		return true
	})

	for _, e := range entries {
		if err := stream.Send(e); err != nil {
			return err
		}
	}
	return nil
}

func (s *Server) Stats(
	ctx context.Context,
	req *pb.StatsRequest,
) (*pb.StatsResponse, error) {
	st := s.svc.Stats()

	return &pb.StatsResponse{
		Size:     uint64(st.Size),
		Segments: uint64(st.Segments),
		Capacity: uint64(st.Capacity),
	}, nil
}
