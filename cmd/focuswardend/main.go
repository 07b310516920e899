package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SoarinFerret/FocusWarden/internal/api"
	"github.com/SoarinFerret/FocusWarden/internal/config"
	"github.com/SoarinFerret/FocusWarden/internal/ipc"
	"github.com/SoarinFerret/FocusWarden/internal/loginctl"
	"github.com/SoarinFerret/FocusWarden/internal/service"
	"github.com/SoarinFerret/FocusWarden/internal/state"
	"github.com/SoarinFerret/FocusWarden/internal/store"
	"github.com/SoarinFerret/FocusWarden/internal/store/sqlite"
	"github.com/SoarinFerret/FocusWarden/internal/strategy"
)

const heartbeatInterval = 30 * time.Second

func main() {
	// check for argument to determine config location
	argPath := "/etc/focuswarden/config.toml"
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	log.Println("Using config file at:", argPath)
	cfg, err := config.LoadConfigFromFile(argPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	st, heartbeat, err := openStore(cfg)
	if err != nil {
		log.Fatal("Failed to initialize session store:", err)
	}
	defer st.Close()

	sessions := service.New(st, strategy.OptionsFromConfig(cfg), time.Now)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		cancel()
	}()

	var wg sync.WaitGroup

	if cfg.Daemon.Bus != config.BusNone {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("Opening %s D-Bus service...", cfg.Daemon.Bus)
			if err := serveBus(ctx, sessions, cfg.Daemon.Bus); err != nil {
				log.Println("focuswarden bus service error:", err)
			}
		}()
	}

	if cfg.Daemon.HTTPListen != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Serving HTTP on", cfg.Daemon.HTTPListen)
			if err := serveHTTP(ctx, sessions, cfg.Daemon); err != nil {
				log.Println("focuswarden http service error:", err)
			}
		}()
	}

	if cfg.Daemon.PauseOnLock {
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Println("Monitoring dbus for screen locks...")
			if err := loginctl.Watch(ctx, sessions); err != nil {
				log.Println("logind watcher error:", err)
			}
		}()
	}

	if heartbeat != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runHeartbeat(ctx, heartbeat)
		}()
	}

	wg.Wait()
	fmt.Println("Shutdown complete")
}

// openStore returns the configured store and, for the JSON file, the
// heartbeat used to detect downtime at the next start.
func openStore(cfg *config.Config) (store.Store, func(), error) {
	switch cfg.Daemon.Store {
	case config.StoreSQLite:
		log.Println("Using SQLite store at:", cfg.Daemon.DatabasePath)
		st, err := sqlite.New(cfg.Daemon.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	default:
		log.Println("Using JSON state file at:", cfg.Daemon.StatePath)
		mgr, err := state.NewManager(cfg.Daemon.StatePath)
		if err != nil {
			return nil, nil, err
		}
		return mgr, mgr.Heartbeat, nil
	}
}

func serveBus(ctx context.Context, sessions *service.Service, bus string) error {
	conn, err := ipc.Connect(bus)
	if err != nil {
		return err
	}
	defer conn.Close()

	sm := &ipc.SessionManager{Sessions: sessions, Identify: ipc.BusIdentity(conn)}
	return ipc.Serve(ctx, conn, sm)
}

func serveHTTP(ctx context.Context, sessions *service.Service, cfg config.DaemonConfig) error {
	srv := &http.Server{
		Addr:              cfg.HTTPListen,
		Handler:           api.NewHandler(sessions, cfg.HTTPUserHeader),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runHeartbeat(ctx context.Context, beat func()) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	beat()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			beat()
		}
	}
}
