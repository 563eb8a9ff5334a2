// Package probe answers one question: is a NotchBar host installed on this
// machine. The channel runs it as a precondition before dialing, so a missing
// host surfaces as a distinct error without any connection attempt.
package probe

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/notchbar/notchbar-go/internal/logging"
	"github.com/notchbar/notchbar-go/internal/metrics"
)

// Config controls where the probe looks for a host installation.
type Config struct {
	// AssumeInstalled skips scanning entirely. Headless and CI environments
	// set this to reach a simulator without a host install on disk.
	AssumeInstalled bool

	// BundleGlobs are doublestar patterns matched against paths relative to
	// each application root.
	BundleGlobs []string

	// AppRoots are the directories scanned for host bundles. Roots that do
	// not exist are skipped silently.
	AppRoots []string

	// ProcessNames mark a running host even when no bundle is on disk, e.g.
	// a simulator started from a build tree.
	ProcessNames []string
}

// DefaultConfig covers the stock install locations plus a locally running
// simulator.
func DefaultConfig() Config {
	roots := []string{"/Applications", "/usr/local/opt", "/opt/notchbar"}
	if home, err := os.UserHomeDir(); err == nil {
		roots = append(roots, filepath.Join(home, "Applications"))
	}
	return Config{
		BundleGlobs:  []string{"NotchBar*.app", "**/NotchBar*.app", "notchbar/bin/notchbar-host"},
		AppRoots:     roots,
		ProcessNames: []string{"NotchBar", "notchbar-host", "notchbar-hostsim"},
	}
}

// Prober caches its scan result behind a rate limiter so repeated channel
// dials do not re-walk the filesystem, while a host installed mid-session is
// still picked up on the next granted re-scan.
type Prober struct {
	cfg  Config
	log  *logging.Logger
	mets *metrics.Metrics

	mu        sync.Mutex
	limiter   *rate.Limiter
	known     bool
	installed bool
}

// New builds a Prober. A nil logger is replaced with the silent one and nil
// metrics with the shared collector.
func New(cfg Config, log *logging.Logger, mets *metrics.Metrics) *Prober {
	if log == nil {
		log = logging.Nop()
	}
	if mets == nil {
		mets = metrics.Shared()
	}
	return &Prober{
		cfg:     cfg,
		log:     log.Named("probe"),
		mets:    mets,
		limiter: rate.NewLimiter(rate.Every(30*time.Second), 1),
	}
}

// Installed reports whether a host installation is detectable. The first call
// scans; later calls reuse the cached result until the limiter grants a
// re-scan.
func (p *Prober) Installed() bool {
	if p.cfg.AssumeInstalled {
		p.mets.RecordProbe("assumed")
		return true
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.known && !p.limiter.Allow() {
		p.mets.RecordProbe("cached")
		return p.installed
	}

	start := time.Now()
	p.installed = p.bundlePresent() || p.processRunning()
	p.known = true

	outcome := "miss"
	if p.installed {
		outcome = "hit"
	}
	p.mets.RecordProbe(outcome)
	p.log.Debug("host installation scan",
		zap.Bool("installed", p.installed),
		zap.Duration("took", time.Since(start)))
	return p.installed
}

// errFound aborts a walk as soon as one bundle matches.
var errFound = filepath.SkipAll

func (p *Prober) bundlePresent() bool {
	for _, root := range p.cfg.AppRoots {
		if root == "" {
			continue
		}
		info, err := os.Stat(root)
		if err != nil || !info.IsDir() {
			continue
		}
		if p.scanRoot(root) {
			return true
		}
	}
	return false
}

func (p *Prober) scanRoot(root string) bool {
	found := false
	conf := fastwalk.Config{Follow: false}

	_ = fastwalk.Walk(&conf, root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		for _, pattern := range p.cfg.BundleGlobs {
			if ok, _ := doublestar.Match(pattern, filepath.ToSlash(rel)); ok {
				found = true
				return errFound
			}
		}
		// App bundles live near the top of their root; don't descend into
		// arbitrary application internals.
		if d.IsDir() && strings.Count(rel, string(filepath.Separator)) >= 3 {
			return filepath.SkipDir
		}
		return nil
	})
	return found
}

func (p *Prober) processRunning() bool {
	if len(p.cfg.ProcessNames) == 0 {
		return false
	}
	entries, err := os.ReadDir("/proc")
	if err != nil {
		return false
	}
	for _, entry := range entries {
		if !entry.IsDir() || !isNumeric(entry.Name()) {
			continue
		}
		comm, err := os.ReadFile(filepath.Join("/proc", entry.Name(), "comm"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(comm))
		for _, want := range p.cfg.ProcessNames {
			if strings.EqualFold(name, want) {
				return true
			}
		}
	}
	return false
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
