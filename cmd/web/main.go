package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"taskapi/internal/client"
	"taskapi/internal/config"
	"taskapi/internal/webui"

	gfshutdown "github.com/gelmium/graceful-shutdown"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.LoadWeb()

	api := client.New(cfg.APIURL, cfg.APITimeout)
	queries := client.NewQueryClient(api, client.Options{
		StaleTime:  cfg.StaleTime,
		GCTime:     cfg.GCTime,
		Retry:      cfg.Retry,
		RetryDelay: time.Second,
		Now:        time.Now,
	})

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	go queries.RunCollector(collectorCtx, time.Minute)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: webui.NewServer(queries).Router(),
	}

	go func() {
		log.Printf("🚀 Web app running on port %s (API %s)\n", cfg.Port, cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				log.Println("🛑 Shutting down web app...")
				return srv.Shutdown(ctx)
			},
			"cache-collector": func(ctx context.Context) error {
				stopCollector()
				return nil
			},
		},
	)

	exitCode := <-wait
	os.Exit(exitCode)
}
