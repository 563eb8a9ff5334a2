package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/notchbar/notchbar-go/internal/hostsim"
	"github.com/notchbar/notchbar-go/internal/logging"
)

func main() {
	addr := flag.String("addr", "", "listen address (overrides config)")
	configPath := flag.String("config", "", "path to a TOML config file")
	dev := flag.Bool("dev", false, "verbose console logging")
	flag.Parse()

	log := logging.NewDefault()
	if *dev {
		log = logging.NewDevelopment()
	}
	defer log.Sync()

	cfg := hostsim.DefaultConfig()
	if *configPath != "" {
		loaded, err := hostsim.LoadConfig(*configPath)
		if err != nil {
			log.Fatal("loading config", zap.Error(err))
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Addr = *addr
	}

	srv := hostsim.New(cfg, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn("shutdown incomplete", zap.Error(err))
		}
	case err := <-errChan:
		log.Fatal("simulator failed", zap.Error(err))
	}
}
