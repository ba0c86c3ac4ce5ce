package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskgrid.org/internal/audit"
	"taskgrid.org/internal/auth"
	"taskgrid.org/internal/httpapi"
	"taskgrid.org/internal/obs"
	"taskgrid.org/internal/org"
	"taskgrid.org/internal/store/pg"
	"taskgrid.org/internal/stream"
	"taskgrid.org/internal/task"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	obs.Init()
	obs.InitBuildInfo(version, commit)

	var (
		users    auth.UserStore
		orgs     org.Store
		repo     task.Repository
		recorder audit.Recorder
		probe    httpapi.ReadyProbe
	)

	if dsn := os.Getenv("TASKGRID_PG_DSN"); dsn != "" {
		store, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer store.Close()
		users = store.Users()
		orgs = store.Orgs()
		repo = store.Tasks()
		recorder = audit.NewPGStore(store.DB())
		probe = httpapi.ReadyProbe{DB: store.DB()}
	} else {
		users = auth.NewMemoryUserStore()
		orgs = org.NewMemoryStore()
		repo = task.NewMemoryRepository()
		recorder = audit.NewLog()
	}

	authSvc, err := auth.NewService(users, orgs)
	if err != nil {
		log.Fatalf("auth service: %v", err)
	}
	taskSvc, err := task.NewService(repo, org.NewHierarchyResolver(orgs), recorder)
	if err != nil {
		log.Fatalf("task service: %v", err)
	}

	api := httpapi.New(probe, version, authSvc, taskSvc, recorder, stream.New())

	addr := os.Getenv("TASKGRID_ADDR")
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting taskgrid-api %s on %s", version, srv.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}
