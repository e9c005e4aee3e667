package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehdihou95/middleware-mapper/internal/config"
	"github.com/mehdihou95/middleware-mapper/internal/engine"
	"github.com/mehdihou95/middleware-mapper/internal/httpapi"
	"github.com/mehdihou95/middleware-mapper/internal/ingest"
	"github.com/mehdihou95/middleware-mapper/internal/logger"
	"github.com/mehdihou95/middleware-mapper/internal/mapping"
	"github.com/mehdihou95/middleware-mapper/internal/result"
	"github.com/mehdihou95/middleware-mapper/internal/store"
	"github.com/mehdihou95/middleware-mapper/internal/version"
)

func main() {
	configPath := flag.String("config", "config.json", "path to config file")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	log.SetLevel(cfg.LogLevel)
	log.Infof("%s starting", version.String())

	persistence, ruleSource, cleanup, err := buildBackend(cfg, log)
	if err != nil {
		log.Fatalf("Build store backend: %v", err)
	}
	defer cleanup()

	results := result.NewStore(cfg.QueueSize)
	processor := engine.NewProcessor(persistence, ruleSource, results, engine.DefaultRegistry(), log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go worker(ctx, results, processor, log)

	handler := httpapi.NewHandler(results, processor, cfg.AllowedBaseDir, log)
	router := httpapi.SetupRouter(handler)

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Infof("Server starting on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-sigChan
	log.Info("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	cancel() // Stop worker

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server shutdown error: %v", err)
	}

	log.Infof("Timings: %s", processor.Timings())
	log.Info("Server stopped")
}

// buildBackend wires the persistence boundary and rule source selected by
// configuration. Rule files take priority as rule source; the mongo backend
// serves rules itself when no rules directory is configured.
func buildBackend(cfg *config.Config, log *logger.Logger) (engine.Store, engine.RuleSource, func(), error) {
	fileRules := mapping.NewFileSource(cfg.RulesDir)
	noop := func() {}

	switch cfg.Store.Backend {
	case "mongo":
		mongoStore, err := store.NewMongoStore(cfg.Store.Mongo.URI, cfg.Store.Mongo.Database, log)
		if err != nil {
			return nil, nil, noop, err
		}
		cleanup := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := mongoStore.Close(ctx); err != nil {
				log.Errorf("Close MongoDB: %v", err)
			}
		}
		if cfg.RulesDir != "" {
			return mongoStore, fileRules, cleanup, nil
		}
		return mongoStore, mongoStore, cleanup, nil

	case "delivery":
		return store.NewDeliveryStore(cfg.Store.Delivery, log), fileRules, noop, nil

	default:
		return store.NewMemoryStore(), fileRules, noop, nil
	}
}

// worker processes queued documents one at a time
func worker(ctx context.Context, results *result.Store, processor *engine.Processor, log *logger.Logger) {
	for {
		task, err := results.NextTask(ctx)
		if err != nil {
			if err == context.Canceled {
				return
			}
			log.Errorf("Next task: %v", err)
			time.Sleep(time.Second)
			continue
		}

		processTask(ctx, task, results, processor, log)
	}
}

// processTask runs one queued document through the engine
func processTask(ctx context.Context, task *result.Task, results *result.Store, processor *engine.Processor, log *logger.Logger) {
	res, err := results.Get(task.ResultID)
	if err != nil {
		log.Errorf("Task for unknown result %s", task.ResultID)
		return
	}

	doc, err := ingest.Parse(task.Payload, task.FileName, task.Encoding)
	if err != nil {
		res.AppendError(err.Error())
		res.MarkError()
		return
	}

	processor.Run(ctx, res, doc, task.Interface, task.ClientID)
}
