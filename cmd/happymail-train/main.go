package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/crimson-sun/happymail/internal/config"
	"github.com/crimson-sun/happymail/internal/logging"
	"github.com/crimson-sun/happymail/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logging.Init(cfg.Log.JSON, logging.ParseLevel(cfg.Log.Level))

	// Stop between trainer passes on interrupt so no artifact is written.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(os.Stderr, "happymail: training from %s\n", cfg.Data.TrainPath)
	res, err := pipeline.New(cfg).Run(ctx)
	if err != nil {
		log.Fatalf("training failed: %v", err)
	}
	fmt.Fprintf(os.Stderr, "happymail: wrote %s (%d rows, %d labels, %d features)\n",
		res.ModelPath, res.Rows, len(res.Labels), res.Dim)
}
