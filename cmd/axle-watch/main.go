package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/axle/pkg/cache"
	"github.com/platinummonkey/axle/pkg/corpus"
	"github.com/platinummonkey/axle/pkg/history"
)

func main() {
	// Parse command line flags
	dir := flag.String("dir", ".", "Directory containing the corpus (someip/ and diag/ subtrees)")
	interfacesDir := flag.String("interfaces", "", "Interface documents directory (overrides config)")
	diagnosticsDir := flag.String("diagnostics", "", "Diagnostic documents directory (overrides config)")
	delaySeconds := flag.Int("delay", 2, "Delay in seconds before rechecking after a change")
	format := flag.String("format", "text", "Report format: text, json, github")
	dbPath := flag.String("db", "", "SQLite database to record runs into (optional)")
	flag.Parse()

	log := logrus.New()
	log.SetLevel(logrus.InfoLevel)

	// The watch loop honors the same .axle.yaml the one-shot check reads.
	config, err := corpus.LoadCheckConfigFromDir(*dir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	ifaceDir, diagDir := config.Corpus.Resolve(*dir)
	if *interfacesDir != "" {
		ifaceDir = *interfacesDir
	}
	if *diagnosticsDir != "" {
		diagDir = *diagnosticsDir
	}

	// One cache for the lifetime of the watch: unchanged documents are not
	// re-evaluated on every keystroke.
	opts := corpus.Options{Concurrency: config.Check.Concurrency}
	if !config.Check.NoCache {
		opts.Cache = cache.NewMemoryCache(config.Check.CacheSize, time.Hour)
		defer opts.Cache.Close()
	}

	source := corpus.NewDirectorySource(ifaceDir, diagDir)
	runner := corpus.NewRunner(source, log, opts)

	var store history.Store
	if *dbPath != "" {
		s, err := history.Open("sqlite3", *dbPath)
		if err != nil {
			log.Fatalf("Failed to open run history: %v", err)
		}
		defer s.Close()
		store = s
	}

	check := newChecker(runner, store, log, *format)

	// Create watcher
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Fatalf("Failed to create watcher: %v", err)
	}
	defer watcher.Close()

	watched := 0
	for _, root := range []string{ifaceDir, diagDir} {
		if root == "" {
			continue
		}
		if _, err := os.Stat(root); os.IsNotExist(err) {
			continue
		}
		if err := setupWatcher(watcher, root); err != nil {
			log.Fatalf("Failed to watch %s: %v", root, err)
		}
		watched++
	}
	if watched == 0 {
		log.Fatalf("Nothing to watch: neither %s nor %s exists", ifaceDir, diagDir)
	}

	// First check immediately, then on every relevant change.
	check.run()

	debounce := time.Duration(*delaySeconds) * time.Second
	log.Infof("Watching for definition changes (recheck after %s of quiet)", debounce)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}

			changeOps := fsnotify.Write | fsnotify.Create | fsnotify.Remove | fsnotify.Rename
			if event.Op&changeOps != 0 && filepath.Ext(event.Name) == ".json" {
				log.Infof("Changed: %s", event.Name)
				check.schedule(debounce)
			}

			// Also watch new directories
			if event.Op&fsnotify.Create != 0 {
				fi, err := os.Stat(event.Name)
				if err == nil && fi.IsDir() {
					if err := watcher.Add(event.Name); err != nil {
						log.Warnf("Error watching new directory: %v", err)
					}
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Warnf("Watcher error: %v", err)
		}
	}
}

// setupWatcher recursively adds all directories under root to the watcher
func setupWatcher(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
}

// checker serializes corpus checks and debounces bursts of file events.
type checker struct {
	runner *corpus.Runner
	store  history.Store
	log    *logrus.Logger
	format string

	mu      sync.Mutex
	pending *time.Timer
}

func newChecker(runner *corpus.Runner, store history.Store, log *logrus.Logger, format string) *checker {
	return &checker{runner: runner, store: store, log: log, format: format}
}

// schedule arms the recheck timer, restarting it if a change is already
// pending so rapid saves collapse into one run.
func (c *checker) schedule(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending != nil {
		c.pending.Stop()
	}
	c.pending = time.AfterFunc(delay, c.run)
}

func (c *checker) run() {
	c.mu.Lock()
	defer c.mu.Unlock()

	report, err := c.runner.Run(context.Background(), "watch")
	if err != nil {
		c.log.Errorf("Corpus check did not complete: %v", err)
		return
	}
	if err := corpus.Render(os.Stdout, c.format, report); err != nil {
		c.log.Errorf("Failed to render report: %v", err)
	}
	if c.store != nil {
		if err := c.store.SaveRun(context.Background(), report); err != nil {
			c.log.Warnf("Failed to record run: %v", err)
		}
	}
}
