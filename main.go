package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	port := flag.String("port", "", "Listen port (overrides config)")
	headless := flag.Bool("headless", false, "Run the browser headless")
	debug := flag.Bool("debug", false, "Enable detailed debug logging")
	flag.Parse()

	SetupLogging(*debug)

	if err := godotenv.Load(); err != nil {
		Log().Debug("no .env file found, using process environment")
	}

	config, err := LoadConfig(*configPath)
	if err != nil {
		Log().Error("failed to load config", "path", *configPath, "error", err)
		os.Exit(1)
	}

	if *headless {
		config.Headless = true
	}
	if *debug {
		config.DebugMode = true
	}
	if *port != "" {
		config.Port = *port
	}
	if envPort := os.Getenv("PORT"); envPort != "" && *port == "" {
		config.Port = envPort
	}

	// Container platforms have no display; force headless there.
	if os.Getenv("RENDER") != "" || os.Getenv("DOCKER_ENV") != "" {
		config.Headless = true
	}

	history := NewHistoryStore(config.HistoryPath)
	server := NewServer(config, history)

	httpServer := &http.Server{
		Addr:    ":" + config.Port,
		Handler: server.Routes(),
	}

	go func() {
		Log().Info("server listening", "port", config.Port, "headless", config.Headless)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			Log().Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	Log().Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		Log().Error("shutdown failed", "error", err)
	}
}
