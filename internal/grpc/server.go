package grpc

import (
	"net"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is reported by the health service alongside the overall "" status.
const ServiceName = "orderbot.Bot"

// AdminServer exposes grpc.health.v1 for orchestrators and grpcurl.
type AdminServer struct {
	server *grpc.Server
	health *health.Server
	log    *zap.Logger
}

func NewAdminServer(log *zap.Logger) *AdminServer {
	s := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	h := health.NewServer()
	healthpb.RegisterHealthServer(s, h)

	// Enable reflection for grpcurl/grpcui
	reflection.Register(s)

	a := &AdminServer{server: s, health: h, log: log.Named("grpc")}
	a.SetServing(false)
	return a
}

// SetServing flips the bot's health status; it starts as NOT_SERVING.
func (a *AdminServer) SetServing(serving bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if serving {
		status = healthpb.HealthCheckResponse_SERVING
	}
	a.health.SetServingStatus("", status)
	a.health.SetServingStatus(ServiceName, status)
	a.log.Debug("health status changed", zap.String("status", status.String()))
}

func (a *AdminServer) Serve(lis net.Listener) error {
	a.log.Info("admin grpc listening", zap.String("addr", lis.Addr().String()))
	return a.server.Serve(lis)
}

// GracefulStop marks everything NOT_SERVING and drains open RPCs.
func (a *AdminServer) GracefulStop() {
	a.health.Shutdown()
	a.server.GracefulStop()
}
