package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice/internal/compiler"
	"github.com/aretw0/lattice/internal/config"
	"github.com/aretw0/lattice/internal/runtime"
	"github.com/aretw0/lattice/pkg/adapters/bolt"
	loamstore "github.com/aretw0/lattice/pkg/adapters/loam"
	"github.com/aretw0/lattice/pkg/adapters/memory"
	redisstore "github.com/aretw0/lattice/pkg/adapters/redis"
	"github.com/aretw0/lattice/pkg/content"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/persistence/middleware"
	"github.com/aretw0/lattice/pkg/ports"
	"github.com/aretw0/lattice/pkg/widgets"
	backend "github.com/redis/go-redis/v9"
)

// Watcher reports ids of explorations that changed on disk.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Backend bundles the exploration store selected by configuration with the
// optional capabilities of its driver.
type Backend struct {
	Store ports.ExplorationStore
	// Writer is nil for read-only drivers.
	Writer ports.ExplorationWriter
	// Watcher is nil unless the driver reads a directory.
	Watcher Watcher

	cfg     *config.Config
	redis   *backend.Client
	closers []func() error
}

// OpenBackend opens the exploration store named by cfg.Store.Driver.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	b := &Backend{cfg: cfg}
	switch cfg.Store.Driver {
	case config.DriverLoam:
		store, err := loamstore.Open(cfg.Store.Dir)
		if err != nil {
			return nil, err
		}
		b.Store, b.Watcher = store, store
	case config.DriverBolt:
		store, err := bolt.Open(cfg.Store.BoltPath)
		if err != nil {
			return nil, err
		}
		b.Store, b.Writer = store, store
		b.closers = append(b.closers, store.Close)
	case config.DriverRedis:
		store := redisstore.NewExplorationStore(b.Redis(), cfg.Redis.Prefix+"exploration:")
		b.Store, b.Writer = store, store
	case config.DriverMemory:
		exps, err := LoadDir(cfg.Store.Dir, compiler.NewParser())
		if err != nil {
			return nil, err
		}
		store, err := memory.NewExplorationStore(exps...)
		if err != nil {
			return nil, err
		}
		b.Store, b.Writer = store, store
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	return b, nil
}

// Redis returns the shared client, dialing lazily on first use.
func (b *Backend) Redis() *backend.Client {
	if b.redis == nil {
		b.redis = backend.NewClient(&backend.Options{
			Addr:     b.cfg.Redis.Addr,
			Password: b.cfg.Redis.Password,
			DB:       b.cfg.Redis.DB,
		})
		b.closers = append(b.closers, b.redis.Close)
	}
	return b.redis
}

// SessionStore returns where server-held playthroughs live: redis when the
// explorations do, memory otherwise.
func (b *Backend) SessionStore() (ports.SessionStore, ports.DistributedLocker, error) {
	if b.cfg.Store.Driver != config.DriverRedis {
		return memory.NewSessionStore(), nil, nil
	}
	store, err := SecureSessions(b.cfg, redisstore.NewSessionStore(b.Redis(),
		redisstore.WithPrefix(b.cfg.Redis.Prefix+"session:"),
		redisstore.WithTTL(b.cfg.Sessions.TTL),
	))
	if err != nil {
		return nil, nil, err
	}
	return store, redisstore.NewLocker(b.Redis(), b.cfg.Redis.Prefix+"lock:"), nil
}

// SecureSessions wraps store with encryption when a session key is configured.
func SecureSessions(cfg *config.Config, store ports.SessionStore) (ports.SessionStore, error) {
	if cfg.Sessions.EncryptionKey == "" {
		return store, nil
	}
	active, err := middleware.ParseKey(cfg.Sessions.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("session encryption key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, raw := range cfg.Sessions.FallbackKeys {
		key, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("session fallback key %d: %w", i+1, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}
	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

// Close releases every resource opened by the backend.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	return errors.Join(errs...)
}

// NewEngine wires the runtime engine with the built-in widgets.
func NewEngine(store ports.ExplorationStore, format content.Format, logger *slog.Logger, emitter ports.AnalyticsEmitter) *runtime.Engine {
	opts := []runtime.EngineOption{
		runtime.WithRenderer(content.NewRenderer(content.WithFormat(format))),
		runtime.WithLogger(logger),
	}
	if emitter != nil {
		opts = append(opts, runtime.WithEmitter(emitter))
	}
	return runtime.NewEngine(store, widgets.Default(), opts...)
}

func isDefinition(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
		return true
	}
	return false
}

// LoadDir parses every YAML or JSON definition below dir.
func LoadDir(dir string, parser *compiler.Parser) ([]*domain.Exploration, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if isDefinition(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return ParseFiles(paths, parser)
}

// ParseFiles parses each file into an exploration, naming it after the file
// when the document carries no id.
func ParseFiles(paths []string, parser *compiler.Parser) ([]*domain.Exploration, error) {
	exps := make([]*domain.Exploration, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		exp, err := parser.Parse(data, compiler.IDFromPath(path))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		exps = append(exps, exp)
	}
	return exps, nil
}
