package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"switchscope/internal/config"
	"switchscope/internal/controller"
	"switchscope/internal/discovery"
	"switchscope/internal/handler"
	"switchscope/internal/hub"
	"switchscope/internal/metrics"
	"switchscope/internal/oui"
	"switchscope/internal/probe"
)

func main() {
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	configPath := flag.String("config", "", "config file path (overrides search order)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting switchscope server...")

	var cfg *config.Config
	var cfgPath string
	var err error
	if *configPath != "" {
		cfg, cfgPath, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgPath, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Config loaded: %s", cfgPath)
	} else {
		log.Println("No config file found, using defaults")
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// OUI vendor store
	ouiStore, err := oui.Open(cfg.OUI.DBPath)
	if err != nil {
		log.Fatalf("Failed to open OUI database: %v", err)
	}
	defer ouiStore.Close()
	if cfg.OUI.IEEEFile != "" {
		f, err := os.Open(cfg.OUI.IEEEFile)
		if err != nil {
			log.Printf("Failed to open IEEE registry file: %v", err)
		} else {
			n, err := ouiStore.ImportIEEE(context.Background(), f)
			f.Close()
			if err != nil {
				log.Printf("IEEE registry import failed: %v", err)
			} else {
				log.Printf("Imported %d OUI prefixes from %s", n, cfg.OUI.IEEEFile)
			}
		}
	}
	resolver := oui.NewResolver(ouiStore, 0)

	// Metrics
	m := metrics.New(prometheus.DefaultRegisterer)

	// Controller client
	client := controller.New(controller.Config{
		BaseURL:         cfg.Controller.URL,
		Token:           cfg.Controller.Token,
		InsecureTLS:     cfg.Controller.InsecureTLS,
		MinInterval:     cfg.RateLimit.MinInterval.Duration(),
		RetryAfter:      cfg.RateLimit.RetryAfter.Duration(),
		ResponseTTL:     cfg.Cache.ResponseTTL.Duration(),
		MaxCacheEntries: cfg.Cache.MaxEntries,
	})
	client.SetObserver(m)

	// SSE hub
	sseHub := hub.New()
	go sseHub.Run()

	// Discovery service
	svc := discovery.NewService(client, resolver, discovery.ServiceConfig{
		ResultTTL: cfg.Cache.ResultTTL.Duration(),
	})
	svc.SetEventPublisher(sseHub)
	svc.SetCycleObserver(m)

	if cfg.Probe.Nmap.Enabled {
		sweep := probe.NewReachabilitySweep(cfg.Probe.Nmap.Timeout.Duration())
		if sweep.Available(context.Background()) {
			svc.SetReachabilityProber(sweep)
			log.Println("Reachability sweep enabled")
		} else {
			log.Println("Reachability sweep requested but nmap is not available")
		}
	}
	if cfg.Probe.SSH.Enabled {
		prober, err := probe.NewSwitchProber(probe.SSHConfig{
			Username:   cfg.Probe.SSH.Username,
			Password:   cfg.Probe.SSH.Password,
			PrivateKey: cfg.Probe.SSH.PrivateKey,
			Passphrase: cfg.Probe.SSH.Passphrase,
			Port:       cfg.Probe.SSH.Port,
			Timeout:    cfg.Probe.SSH.Timeout.Duration(),
		})
		if err != nil {
			log.Fatalf("Failed to create SSH prober: %v", err)
		}
		svc.SetFactProber(prober)
		log.Println("SSH fact probe enabled")
	}

	// Config hot reload: pick up rotated controller tokens without a restart.
	if cfgPath != "" {
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		go func() {
			err := config.Watch(watchCtx, cfgPath, func(next *config.Config) {
				client.SetToken(next.Controller.Token)
			})
			if err != nil && err != context.Canceled {
				log.Printf("Config watcher stopped: %v", err)
			}
		}()
	}

	// HTTP routes
	topoHandler := handler.NewTopologyHandler(svc)
	topoHandler.SetUpstreamCache(client)

	mux := http.NewServeMux()
	topoHandler.Routes(mux, sseHub)
	mux.Handle("GET /metrics", promhttp.Handler())

	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.Logger,
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
