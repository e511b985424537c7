package main

import (
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"pwaicons/src/common"
	"pwaicons/src/config"
	"pwaicons/src/watcher"
)

func main() {
	// Load config; without icons.yaml the default 192/512 plan is used
	cfg, err := config.LoadOrDefault(config.DefaultPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	processor := common.NewProcessor(cfg.Margin)
	targets := make([]common.IconTarget, 0, len(cfg.Targets))
	for _, t := range cfg.Targets {
		targets = append(targets, common.IconTarget{Size: t.Size, Path: t.Path})
	}
	var favicon *common.IconTarget
	if cfg.Favicon != nil {
		favicon = &common.IconTarget{Size: cfg.Favicon.Size, Path: cfg.Favicon.Path}
	}

	// Watch callbacks may overlap with a slow run
	var mu sync.Mutex
	generate := func() {
		mu.Lock()
		defer mu.Unlock()
		if failed := processor.Generate(os.Stdout, cfg.Source, targets, favicon); failed > 0 {
			log.Printf("%d of %d icons failed", failed, len(targets)+boolToInt(favicon != nil))
		}
	}

	generate()

	if !cfg.Watch {
		return
	}

	w, err := watcher.NewWatcher(cfg.Source, watcher.DefaultDebounce, generate)
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}
	if err := w.Start(); err != nil {
		log.Fatalf("Failed to start watcher: %v", err)
	}

	log.Println("Press Ctrl+C to stop")

	go func() {
		for event := range w.Events() {
			log.Printf("Event: %v - %s", event.Type, event.FilePath)
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	w.Stop()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
