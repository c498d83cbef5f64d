package signal

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"rulekit/internal/config"
	"rulekit/internal/logging"
)

// Collector gathers signals from a project root.
type Collector struct {
	cfg    config.CollectConfig
	logger *logging.Logger
}

// NewCollector creates a collector with the given collection limits.
func NewCollector(cfg config.CollectConfig, logger *logging.Logger) *Collector {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 8
	}
	if cfg.MaxFiles <= 0 {
		cfg.MaxFiles = 20000
	}
	return &Collector{cfg: cfg, logger: logger}
}

// Collect walks the project tree and returns the signal snapshot: one
// FilePresence signal per observed file plus ManifestDependency signals from
// every recognized manifest. Manifest parse errors degrade to a warning and
// no dependency signals from that manifest, never a fatal error.
func (c *Collector) Collect(root string) (*Set, error) {
	var signals []Signal
	fileCount := 0

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtree: degrade to "no signals from there"
			c.logger.Warn("Skipping unreadable path", map[string]interface{}{
				"path":  path,
				"error": err.Error(),
			})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if c.excluded(d.Name()) {
				return filepath.SkipDir
			}
			if strings.Count(rel, "/")+1 > c.cfg.MaxDepth {
				return filepath.SkipDir
			}
			return nil
		}

		if fileCount >= c.cfg.MaxFiles {
			return filepath.SkipAll
		}
		fileCount++

		signals = append(signals, Signal{Kind: FilePresence, Value: rel, Path: rel})

		if parser, ok := manifestParsers[filepath.Base(rel)]; ok {
			deps, perr := parser(path)
			if perr != nil {
				c.logger.Warn("Failed to parse manifest", map[string]interface{}{
					"manifest": rel,
					"error":    perr.Error(),
				})
				return nil
			}
			for _, dep := range deps {
				signals = append(signals, Signal{Kind: ManifestDependency, Value: dep, Path: rel})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Collection order depends on the filesystem; sort so the snapshot is
	// deterministic for a given tree.
	sort.SliceStable(signals, func(i, j int) bool {
		if signals[i].Path != signals[j].Path {
			return signals[i].Path < signals[j].Path
		}
		if signals[i].Kind != signals[j].Kind {
			return signals[i].Kind < signals[j].Kind
		}
		return signals[i].Value < signals[j].Value
	})

	c.logger.Debug("Collected signals", map[string]interface{}{
		"files":   fileCount,
		"signals": len(signals),
	})

	return NewSet(signals), nil
}

func (c *Collector) excluded(dirName string) bool {
	for _, ex := range c.cfg.ExcludedPaths {
		if dirName == ex {
			return true
		}
	}
	return false
}
