package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/config"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/infrastructure"
	"github.com/bhumika-04/EmailRpaSolution-sub001/internal/worker"
)

func main() {
	stages := flag.String("stage", "", "comma-separated stages to run ("+strings.Join(worker.Stages(), ", ")+"); empty runs all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}

	infra, err := infrastructure.New(cfg)
	if err != nil {
		log.Fatal("infrastructure init failed:", err)
	}
	logger := infra.Logger

	all, err := worker.NewStages(cfg, infra)
	if err != nil {
		log.Fatal("stage init failed:", err)
	}
	selected, err := worker.Select(all, splitStages(*stages)...)
	if err != nil {
		log.Fatal(err)
	}

	if err := infra.Start(); err != nil {
		log.Fatal("infrastructure start failed:", err)
	}
	infra.Lifecycle.WaitForStartup()

	logger.Info("courier worker starting",
		"version", cfg.Version,
		"env", cfg.Env(),
		"stages", len(selected),
	)

	w := worker.New(infra.Delivery, consumerName(), logger, selected...)
	infra.Lifecycle.Go("worker", w.Run)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("initiating shutdown")
	if err := infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
	if err := infra.Lifecycle.Err(); err != nil {
		logger.Error("worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("courier worker stopped")
}

func splitStages(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func consumerName() string {
	host, err := os.Hostname()
	if err != nil {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
