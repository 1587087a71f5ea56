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

	"taxograph/internal/config"
	"taxograph/internal/domain"
	"taxograph/internal/engine"
	"taxograph/internal/handler"
	"taxograph/internal/hub"
	"taxograph/internal/render"
	"taxograph/internal/repository/sqlite"
	"taxograph/internal/service"
	"taxograph/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "config file path (defaults to search order)")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite cache path")
	datasetPath := flag.String("dataset", "", "taxonomy dataset file (JSON or YAML)")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting taxograph server...")

	// Load configuration
	var cfg *config.Config
	var cfgFile string
	var err error
	if *configPath != "" {
		cfg, cfgFile, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgFile, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgFile != "" {
		log.Printf("Config loaded from %s", cfgFile)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}
	log.Println(cfg.Summary())

	// Initialize SQLite cache
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize SSE hub
	sseHub := hub.New()
	go sseHub.Run()

	// Connect event bus to SSE hub
	eventChan := make(chan service.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			sseHub.Broadcast(string(event.Type), event.Payload)
		}
	}()

	// Initialize the graph engine with an empty session; the dataset
	// import below replaces it
	eng := engine.New(&domain.Dataset{}, engineOptions(cfg))

	// Stream frames and progress to connected clients
	eng.OnFrame(func(f *render.Frame) {
		sseHub.Broadcast("frame", f)
	})
	eng.OnProgress(func(p domain.Progress) {
		sseHub.Broadcast("progress", p)
	})

	// Initialize the dataset service around cache and engine
	svc := service.NewDatasetService(repo, eng, eventBus)

	// Prime the session: prefer the dataset file, fall back to the cache
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Dataset.Path != "" {
		if _, err := svc.ImportFile(ctx, cfg.Dataset.Path); err != nil {
			log.Fatalf("Failed to import dataset %s: %v", cfg.Dataset.Path, err)
		}
		log.Printf("Dataset imported from %s", cfg.Dataset.Path)
	} else if err := svc.ReloadFromCache(ctx); err != nil {
		log.Printf("No cached dataset available: %v", err)
	}

	// Watch the dataset file for edits and reimport on change
	if cfg.Dataset.Path != "" && cfg.Dataset.Watch {
		w := watcher.New(cfg.Dataset.Path, func() {
			if _, err := svc.ImportFile(context.Background(), cfg.Dataset.Path); err != nil {
				log.Printf("Reimport after file change failed: %v", err)
			}
		})
		go func() {
			if err := w.Watch(ctx); err != nil {
				log.Printf("Dataset watcher stopped: %v", err)
			}
		}()
	}

	// Run the engine loop
	go eng.Run(ctx)

	// Initialize HTTP handlers
	graphHandler := handler.NewGraphHandler(svc, eng)

	// Setup routes
	mux := http.NewServeMux()

	// Engine snapshots
	mux.HandleFunc("GET /api/frame", graphHandler.GetFrame)
	mux.HandleFunc("GET /api/progress", graphHandler.GetProgress)
	mux.HandleFunc("GET /api/warnings", graphHandler.GetWarnings)

	// Dataset endpoints
	mux.HandleFunc("GET /api/dataset", graphHandler.GetDataset)
	mux.HandleFunc("GET /api/stats", graphHandler.GetStats)
	mux.HandleFunc("GET /api/nodes/{id}", graphHandler.GetNode)
	mux.HandleFunc("PUT /api/nodes/{id}", graphHandler.UpdateNode)
	mux.HandleFunc("DELETE /api/nodes/{id}", graphHandler.DeleteNode)

	// Import/export endpoints
	mux.HandleFunc("POST /api/import", graphHandler.ImportDataset)
	mux.HandleFunc("POST /api/reload", graphHandler.Reload)
	mux.HandleFunc("GET /api/export/json", graphHandler.ExportJSON)
	mux.HandleFunc("GET /api/export/yaml", graphHandler.ExportYAML)

	// Session and view commands
	mux.HandleFunc("POST /api/session/reset", graphHandler.ResetSession)
	mux.HandleFunc("POST /api/view/zoom-in", graphHandler.ZoomIn)
	mux.HandleFunc("POST /api/view/zoom-out", graphHandler.ZoomOut)
	mux.HandleFunc("POST /api/view/reset", graphHandler.ResetView)
	mux.HandleFunc("POST /api/view/fit", graphHandler.FitToView)
	mux.HandleFunc("POST /api/view/zoom-to/{id}", graphHandler.ZoomToNode)
	mux.HandleFunc("POST /api/view/size", graphHandler.Resize)
	mux.HandleFunc("POST /api/force-load", graphHandler.ForceLoad)
	mux.HandleFunc("POST /api/pointer", graphHandler.Pointer)

	// SSE events endpoint
	mux.Handle("GET /events", sseHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop the engine loop and watcher
	cancel()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// engineOptions maps the config file onto engine tuning, starting from
// the engine defaults so unset values keep their standard behavior
func engineOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()

	opts.Width = cfg.Engine.Width
	opts.Height = cfg.Engine.Height
	opts.FrameRate = cfg.Engine.FrameRate

	ld := cfg.Engine.Loader
	if ld.CoreCap != nil {
		opts.Loader.CoreCap = *ld.CoreCap
	}
	if ld.ViewportCap != nil {
		opts.Loader.ViewportCap = *ld.ViewportCap
	}
	if ld.ConnectedCap != nil {
		opts.Loader.ConnectedCap = *ld.ConnectedCap
	}
	if ld.BatchSize != nil {
		opts.Loader.BatchSize = *ld.BatchSize
	}
	if ld.MinFPS != nil {
		opts.Loader.MinFPS = *ld.MinFPS
	}

	ph := cfg.Engine.Physics
	if ph.Repulsion != nil {
		opts.Physics.Repulsion = *ph.Repulsion
	}
	if ph.SpringStiffness != nil {
		opts.Physics.SpringStiffness = *ph.SpringStiffness
	}
	if ph.SpringLength != nil {
		opts.Physics.SpringLength = *ph.SpringLength
	}
	if ph.Gravity != nil {
		opts.Physics.Gravity = *ph.Gravity
	}
	if ph.Damping != nil {
		opts.Physics.Damping = *ph.Damping
	}
	if ph.AlphaDecay != nil {
		opts.Physics.AlphaDecay = *ph.AlphaDecay
	}

	rd := cfg.Engine.Render
	if rd.LabelMinScale != nil {
		opts.Render.LabelMinScale = *rd.LabelMinScale
	}
	if rd.RadiusMin != nil || rd.RadiusMax != nil {
		radius := opts.Render.Radius
		if rd.RadiusMin != nil {
			radius.Min = *rd.RadiusMin
		}
		if rd.RadiusMax != nil {
			radius.Max = *rd.RadiusMax
		}
		// every component measures nodes with the same scale
		opts.Render.Radius = radius
		opts.Loader.Radius = radius
		opts.Physics.Radius = radius
		opts.Interact.Radius = radius
	}

	vp := cfg.Engine.Viewport
	if vp.MinScale != nil {
		opts.Viewport.MinScale = *vp.MinScale
	}
	if vp.MaxScale != nil {
		opts.Viewport.MaxScale = *vp.MaxScale
	}
	if vp.RecomputeInterval != nil {
		opts.Viewport.RecomputeInterval = vp.RecomputeInterval.Duration()
	}

	return opts
}
