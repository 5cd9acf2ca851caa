package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sirdesai22/crosswire-replica/internal/admin"
	"github.com/sirdesai22/crosswire-replica/internal/backend"
	"github.com/sirdesai22/crosswire-replica/internal/config"
	"github.com/sirdesai22/crosswire-replica/internal/db"
	"github.com/sirdesai22/crosswire-replica/internal/elastic"
	"github.com/sirdesai22/crosswire-replica/internal/feed"
	"github.com/sirdesai22/crosswire-replica/internal/ingest"
	"github.com/sirdesai22/crosswire-replica/internal/metrics"
	"github.com/sirdesai22/crosswire-replica/internal/session"
)

func runReplica(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	metrics.Register()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := session.New(session.Options{})
	dead := ingest.NewDeadLetters(cfg.DeadLetterCapacity)
	dispatcher := ingest.NewDispatcher(s, dead)
	srv := &admin.Server{S: s, Dead: dead}

	if cfg.BackendURL != "" {
		client := backend.New(cfg.BackendURL, cfg.BackendTimeout)
		if err := ingest.Bootstrap(ctx, client, s); err != nil {
			// The feed's sync events will fill the session in.
			log.Printf("⚠️ %v", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.PostgresDSN != "" {
		pg, err := db.Connect(cfg.PostgresDSN)
		if err != nil {
			return err
		}
		if err := db.Migrate(pg); err != nil {
			return err
		}
		poller := &feed.Poller{
			Source:    feed.GormSource{DB: pg},
			Apply:     dispatcher,
			Interval:  cfg.FeedPollInterval,
			BatchSize: cfg.FeedBatchSize,
		}
		g.Go(func() error { return poller.Run(gctx) })
	}

	if cfg.FeedWSURL != "" {
		ws := &feed.WebsocketSource{URL: cfg.FeedWSURL, Apply: dispatcher}
		g.Go(func() error { return ws.Run(gctx) })
	}

	if cfg.PostgresDSN == "" && cfg.FeedWSURL == "" {
		log.Println("⚠️ no event feed configured; the replica will only reflect the bootstrap snapshot")
	}

	if cfg.ElasticURL != "" {
		es, err := elastic.Connect(cfg.ElasticURL)
		if err != nil {
			return err
		}
		if err := elastic.EnsureIndexes(ctx, es); err != nil {
			return err
		}
		ix := &elastic.Indexer{ES: es, S: s, FlushInterval: time.Second}
		g.Go(func() error { return ix.Run(gctx) })
		srv.Search = func(ctx context.Context, q string, limit, offset int) (elastic.SearchResult, error) {
			return elastic.Search(ctx, es, q, limit, offset)
		}
	}

	httpSrv := &http.Server{Addr: cfg.AdminAddr, Handler: srv.Handler(cfg.CORSOrigins)}
	g.Go(func() error {
		log.Printf("🧭 Admin API running on %s", cfg.AdminAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
