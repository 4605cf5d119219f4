package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/yanqian/invoice-query/pkg/metrics"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.RegisterPipelineMetrics()

	app, cleanup, err := initializeApp()
	if err != nil {
		log.Fatalf("failed to wire application: %v", err)
	}

	err = app.Run(ctx)
	cleanup()
	if err != nil {
		log.Fatalf("application stopped with error: %v", err)
	}
}
