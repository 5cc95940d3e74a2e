package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/weftlabs/weft/internal/catalog"
	"github.com/weftlabs/weft/internal/config"
	"github.com/weftlabs/weft/internal/engine"
	"github.com/weftlabs/weft/internal/reasoner"
	"github.com/weftlabs/weft/internal/store"
)

// Store is the combined persistence surface every command works against.
type Store interface {
	engine.GraphStore
	engine.ReceiptLog
}

// runtime bundles the assembled engine components for one command
// invocation. Close releases the store.
type runtime struct {
	cfg     *config.Config
	store   Store
	catalog *catalog.Catalog
	orch    *engine.Orchestrator
	logger  *slog.Logger
	closer  func() error
}

func (r *runtime) Close() error {
	if r.closer == nil {
		return nil
	}
	return r.closer()
}

// loadConfig resolves the effective configuration: defaults when no
// --config path was given, the validated file otherwise.
func loadConfig(opts *RootOptions) (*config.Config, error) {
	if opts.Config == "" {
		cfg := config.Default()
		cfg.Verbose = cfg.Verbose || opts.Verbose
		return cfg, nil
	}
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg.Verbose = cfg.Verbose || opts.Verbose
	return cfg, nil
}

func setupLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore opens the configured store: SQLite for a file path, the
// in-memory store otherwise. The returned closer is a no-op for memory.
func openStore(cfg *config.Config) (Store, func() error, error) {
	if cfg.InMemory() {
		return store.NewMemory(), func() error { return nil }, nil
	}
	st, err := store.Open(cfg.StorePath)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}
	return st, st.Close, nil
}

func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		cat, err := catalog.LoadBuiltin()
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load builtin catalog", err)
		}
		return cat, nil
	}
	cat, err := catalog.LoadFile(cfg.CatalogPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
	}
	return cat, nil
}

func buildReasoner(cfg *config.Config, logger *slog.Logger) (engine.Reasoner, error) {
	switch cfg.Reasoner.Mode {
	case "", config.ReasonerLocal:
		return reasoner.NewLocal(logger), nil
	case config.ReasonerExec:
		r, err := reasoner.NewExec(cfg.Reasoner.Command, cfg.Reasoner.Timeout.Std(), logger)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to build exec reasoner", err)
		}
		return r, nil
	default:
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("unknown reasoner mode %q", cfg.Reasoner.Mode))
	}
}

// setupRuntime assembles store, catalog, reasoner, and orchestrator from
// the effective configuration.
func setupRuntime(opts *RootOptions) (*runtime, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}
	logger := setupLogger(cfg)

	st, closer, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		_ = closer()
		return nil, err
	}

	oracle, err := buildReasoner(cfg, logger)
	if err != nil {
		_ = closer()
		return nil, err
	}

	txn := engine.NewTransactionManager(st, st, engine.UUIDv7Generator{}, cfg.Actor)
	orch := engine.NewOrchestrator(
		txn,
		engine.NewWorkflowValidator(cat),
		oracle,
		engine.NewStateMutator(engine.NewKernel(cat), logger),
		cat,
		logger,
	)

	return &runtime{
		cfg:     cfg,
		store:   st,
		catalog: cat,
		orch:    orch,
		logger:  logger,
		closer:  closer,
	}, nil
}
