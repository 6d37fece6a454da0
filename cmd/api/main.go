package main

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"classtrack.org/internal/auth"
	"classtrack.org/internal/config"
	"classtrack.org/internal/httpapi"
	"classtrack.org/internal/obs"
	"classtrack.org/internal/roster"
	pgstore "classtrack.org/internal/store/pg"
	"classtrack.org/internal/stream"
)

var (
	version = "0.3.1"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	issuer, err := auth.NewIssuer([]byte(cfg.SigningKey))
	if err != nil {
		log.Fatalf("signing key: %v", err)
	}

	// Postgres when a DSN is configured, in-memory stores otherwise.
	var (
		rosterSvc roster.Service
		userStore auth.UserStore
		probe     httpapi.ReadyProbe
	)
	if cfg.DatabaseDSN != "" {
		store, err := pgstore.Open(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		rosterSvc = store
		userStore = store.Users()
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		rosterSvc = roster.NewInMemory()
		userStore = auth.NewInMemoryStore()
	}

	authSvc := auth.NewService(userStore, issuer, auth.WithTokenTTL(cfg.TokenTTL))
	hub := stream.New()

	api := httpapi.New(probe, version, rosterSvc, hub, authSvc)
	api.SetRateLimit(cfg.RateBurst, cfg.RatePerSec)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting classtrack-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	// Optional gRPC health endpoint.
	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("grpc listen: %v", err)
		}
		grpcSrv = grpc.NewServer()
		healthpb.RegisterHealthServer(grpcSrv, httpapi.NewGRPCServer(probe))
		log.Printf("Starting gRPC health endpoint on %s", cfg.GRPCAddr)
		go func() {
			if err := grpcSrv.Serve(lis); err != nil {
				log.Fatalf("grpc serve: %v", err)
			}
		}()
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	log.Println("Stopped")
}
