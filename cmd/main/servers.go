package main

import (
	"fmt"
	"net"

	"crypto-observer/src/config"
	datasource "crypto-observer/src/data_source"
	pb "crypto-observer/src/grpc_control"
	"crypto-observer/src/logger"
	"crypto-observer/src/server"

	"google.golang.org/grpc"
)

// -----------------------------------------------------------------------------

// startServers orchestrates the startup of all server components
func startServers(
	srv *server.FastAPIServer,
	aggregator *datasource.Aggregator,
	refresher *datasource.Refresher,
	config *config.Config,
	configPath string,
	appLogger *logger.Logger,
) {

	// 1. API Server
	go func() {
		if err := srv.Start(); err != nil {
			appLogger.Error("Server failed: %v", err)
		}
	}()

	// 2. gRPC Control Server
	go func() {
		port := config.GrpcPort
		if port == 0 {
			port = 50051 // Default fallback
		}
		lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", config.GrpcHost, port))
		if err != nil {
			appLogger.Critical("failed to listen for gRPC: %v", err)
			return
		}
		grpcServer := grpc.NewServer()
		grpcLogger := logger.NewLogger(config.LogLevel, "ControlService")
		controlService := pb.NewControlService(config, aggregator, refresher, configPath, grpcLogger)
		pb.RegisterCryptoObserverControlServer(grpcServer, controlService)

		appLogger.Info("Starting gRPC Control Server on %s:%d", config.GrpcHost, port)
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Critical("failed to serve gRPC: %v", err)
		}
	}()
}
