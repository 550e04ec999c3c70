package server

import (
	"context"
	"fmt"
	"net"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/keepalive"
)

// HealthServiceName is the gRPC health service name of the game listener.
const HealthServiceName = "berserk.GameServer"

func (s *GameServer) startAdmin() error {
	lis, err := net.Listen("tcp", s.cfg.Admin.GRPCAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Admin.GRPCAddress, err)
	}
	s.grpcLis = lis
	s.grpcServer = grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    30 * time.Second,
			Timeout: 10 * time.Second,
		}),
	)
	s.health = health.NewServer()
	healthpb.RegisterHealthServer(s.grpcServer, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(HealthServiceName, healthpb.HealthCheckResponse_SERVING)

	s.logger.Info("starting gRPC admin server", zap.String("address", lis.Addr().String()))
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			s.logger.Error("gRPC admin server error", zap.Error(err))
		}
	}()
	return nil
}

// stopAdmin flips the health status first so probes see the shutdown.
func (s *GameServer) stopAdmin(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.grpcServer.Stop()
	}
}
