package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"

	"maple/api/grpcserver"
	pb "maple/api/pb"

	"maple/domain/treemap"
	"maple/infra/sequence"
	"maple/jobs/broadcaster"
	"maple/outbox"
	"maple/service"
	"maple/wal"
)

func main() {
	var (
		listenAddr   = flag.String("listen", ":50051", "gRPC listen address")
		walDir       = flag.String("wal-dir", "./data/wal", "write-ahead log directory")
		snapDir      = flag.String("snapshot-dir", "./data/snapshot", "snapshot directory")
		outboxDir    = flag.String("outbox-dir", "./data/outbox", "outbox database directory")
		snapInterval = flag.Duration("snapshot-interval", 5*time.Minute, "snapshot cadence")
		brokers      = flag.String("kafka-brokers", "", "comma-separated Kafka brokers (empty disables broadcasting)")
		topic        = flag.String("kafka-topic", "maple-changes", "Kafka change topic")
	)
	flag.Parse()

	// ---------------- WAL ----------------

	w, err := wal.Open(wal.Config{
		Dir:             *walDir,
		SegmentSize:     2 * 1024 * 1024,
		SegmentDuration: time.Minute,
	})
	if err != nil {
		log.Fatalf("WAL init failed: %v", err)
	}
	defer w.Close()

	// ---------------- Outbox ----------------

	var out *outbox.Outbox
	if *brokers != "" {
		out, err = outbox.Open(*outboxDir)
		if err != nil {
			log.Fatalf("outbox init failed: %v", err)
		}
		defer out.Close()
	}

	// ---------------- Sequencer ----------------

	seqGen := sequence.New(0)

	// ---------------- Domain ----------------

	m := treemap.New[string, []byte]()

	// ---------------- RECOVERY ----------------

	if err := service.Recover(*walDir, *snapDir, m, seqGen); err != nil {
		log.Fatalf("recovery failed: %v", err)
	}

	// ---------------- Service ----------------

	svc := service.NewKVService(m, seqGen, w, out)

	// ---------------- Background Jobs ----------------

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc.StartSnapshotJob(ctx, *snapDir, *snapInterval)

	if out != nil {
		bc, err := broadcaster.New(out, strings.Split(*brokers, ","), *topic)
		if err != nil {
			log.Fatalf("broadcaster init failed: %v", err)
		}
		defer bc.Close()
		bc.Start(ctx)
	}

	// ---------------- gRPC ----------------

	lis, err := net.Listen("tcp", *listenAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer()
	pb.RegisterKVServer(grpcSrv, grpcserver.NewServer(svc))

	fmt.Printf("🚀 Maple KV running on %s\n", *listenAddr)

	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
