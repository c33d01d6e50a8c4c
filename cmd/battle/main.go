// Package main provides the text battle host: it loads configuration and the
// content catalog, then runs a single player's floors and encounters from
// standard input.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tithe/internal/config"
	"github.com/cory-johannsen/tithe/internal/game/combat"
	"github.com/cory-johannsen/tithe/internal/game/command"
	"github.com/cory-johannsen/tithe/internal/game/content"
	"github.com/cory-johannsen/tithe/internal/game/dice"
	"github.com/cory-johannsen/tithe/internal/game/encounter"
	"github.com/cory-johannsen/tithe/internal/game/session"
	"github.com/cory-johannsen/tithe/internal/host"
	"github.com/cory-johannsen/tithe/internal/observability"
	"github.com/cory-johannsen/tithe/internal/scripting"
	"github.com/cory-johannsen/tithe/internal/server"
	"github.com/cory-johannsen/tithe/internal/storage/postgres"
)

type flags struct {
	configPath string
	uid        string
	name       string
	noColor    bool
}

func main() {
	var f flags
	flag.StringVar(&f.configPath, "config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	flag.StringVar(&f.uid, "uid", "local", "player identifier used for saved progress")
	flag.StringVar(&f.name, "name", "Vessel", "player display name")
	flag.BoolVar(&f.noColor, "no-color", false, "disable ANSI colors")
	flag.Parse()

	if err := run(context.Background(), f); err != nil {
		log.Printf("battle: %v", err)
		os.Exit(1)
	}
}

// run wires and runs the host. Deferred cleanup has completed by the time it
// returns.
func run(ctx context.Context, f flags) error {
	start := time.Now()

	cfg, err := config.Load(f.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg, err := content.LoadDir(cfg.Content.Dir)
	if err != nil {
		return fmt.Errorf("loading content from %s: %w", cfg.Content.Dir, err)
	}
	if cfg.Player.StarterMask != "" {
		if err := reg.SetStarterMask(cfg.Player.StarterMask); err != nil {
			return fmt.Errorf("overriding starter mask: %w", err)
		}
	}
	moves, enemies, masks, floors := reg.Counts()
	logger.Info("content loaded",
		zap.Int("moves", moves),
		zap.Int("enemies", enemies),
		zap.Int("masks", masks),
		zap.Int("floors", floors),
	)

	var src dice.Source = dice.NewCryptoSource()
	if cfg.Combat.RNGSeed != 0 {
		src = dice.NewSeededSource(cfg.Combat.RNGSeed)
		logger.Info("using seeded dice", zap.Int64("seed", cfg.Combat.RNGSeed))
	}
	roller := dice.NewLoggedRoller(src, observability.Component(logger, "dice"))

	// Saved progress decides whether this is a new game.
	var (
		progressRepo *postgres.ProgressRepository
		recorder     encounter.Recorder
		saved        *postgres.Progress
	)
	if cfg.Database.Enabled {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer pool.Close()
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		progressRepo = postgres.NewProgressRepository(pool.DB())
		recorder = postgres.NewEncounterRepository(pool.DB()).ForPlayer(f.uid)

		saved, err = progressRepo.Load(ctx, f.uid)
		if err != nil && !errors.Is(err, postgres.ErrProgressNotFound) {
			return fmt.Errorf("loading progress for %s: %w", f.uid, err)
		}
	}

	sess, err := session.NewManager(reg).AddPlayer(f.uid, f.name, session.Options{
		Base: session.BaseStats{
			MaxHP:   cfg.Player.BaseMaxHP,
			Attack:  cfg.Player.BaseAttack,
			Defense: cfg.Player.BaseDefense,
			Speed:   cfg.Player.BaseSpeed,
		},
		GrantStarter: saved == nil,
	})
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	if saved != nil {
		if err := postgres.Apply(reg, sess, *saved); err != nil {
			return fmt.Errorf("restoring progress: %w", err)
		}
		logger.Info("progress restored",
			zap.String("uid", f.uid),
			zap.Int("floor", saved.Floor),
			zap.Int("masks", len(saved.Masks)),
		)
	}

	var (
		inventory   encounter.InventorySink   = sess
		progression encounter.ProgressionSink = sess
		saver       host.Saver
	)
	if progressRepo != nil {
		ps := &postgres.PersistentSession{Session: sess, Repo: progressRepo, Logger: observability.Component(logger, "storage")}
		inventory, progression, saver = ps, ps, ps
	}

	var hooks encounter.Hooks
	if cfg.Scripting.Enabled() {
		scripts := scripting.NewManager(roller, observability.Component(logger, "scripting"))
		defer scripts.Close()
		if err := loadScripts(scripts, cfg.Scripting, reg); err != nil {
			return err
		}
		hooks = encounter.LuaHooks{Scripts: scripts, Logger: observability.Component(logger, "hooks")}
	}

	out := host.NewTextPresenter(os.Stdout, sess.Player, host.Palette{Enabled: !f.noColor})
	console := &host.Console{
		Commands: command.DefaultRegistry(),
		Session:  sess,
		Source:   roller,
		Out:      out,
		Saver:    saver,
		Logger:   observability.Component(logger, "console"),
	}
	encounters, err := encounter.NewManager(encounter.Config{
		Player:      sess.Player,
		Inventory:   inventory,
		Progression: progression,
		Source:      roller,
		Presenter:   out,
		Logger:      observability.Component(logger, "encounter"),
		Pacing:      combat.Pacing{StartDelay: cfg.Combat.StartDelay, EndDelay: cfg.Combat.EndDelay},
		Hooks:       hooks,
		Recorder:    recorder,
		OnEnded:     console.HandleEnded,
		HistorySize: cfg.Combat.HistorySize,
	})
	if err != nil {
		return fmt.Errorf("creating encounter manager: %w", err)
	}
	console.Encounters = encounters

	logger.Info("battle host ready",
		zap.String("uid", f.uid),
		zap.Int("floor", sess.Progress.FloorNumber()),
		zap.Duration("startup", time.Since(start)),
	)

	lc := server.NewLifecycle(logger)
	lc.Add("console", &server.FuncService{
		StartFn: func() error { return console.Run(ctx, os.Stdin) },
		StopFn:  console.Stop,
	})
	if err := lc.Run(ctx); err != nil {
		logger.Error("battle host exited with error", zap.Error(err))
		return err
	}
	return nil
}

// loadScripts loads the global hook scripts from the scripting dir and any
// per-floor overrides from <dir>/floor_<n>.
func loadScripts(scripts *scripting.Manager, cfg config.ScriptingConfig, reg *content.Registry) error {
	if err := scripts.LoadGlobal(cfg.Dir, cfg.InstructionLimit); err != nil {
		return fmt.Errorf("loading global scripts from %s: %w", cfg.Dir, err)
	}
	for _, f := range reg.Floors() {
		scope := host.FloorScope(f.Number)
		dir := filepath.Join(cfg.Dir, scope)
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		if err := scripts.LoadScope(scope, dir, cfg.InstructionLimit); err != nil {
			return fmt.Errorf("loading floor scripts %s: %w", scope, err)
		}
	}
	return nil
}
