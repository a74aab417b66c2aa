package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"github.com/solotrader/tradecraft/internal/catalog"
	"github.com/solotrader/tradecraft/internal/db"
	"github.com/solotrader/tradecraft/internal/engine"
	"github.com/solotrader/tradecraft/internal/events"
	"github.com/solotrader/tradecraft/internal/llm"
	"github.com/solotrader/tradecraft/internal/quest"
	"github.com/solotrader/tradecraft/internal/repository"
	"github.com/solotrader/tradecraft/internal/validator"
	"github.com/spf13/cobra"
)

// newLogger builds the CLI logger. TRADECRAFT_LOG=debug turns on
// verbose output; the default only surfaces warnings.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if strings.EqualFold(os.Getenv("TRADECRAFT_LOG"), "debug") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveCatalog loads the --content pack when given, otherwise the
// embedded seed content.
func resolveCatalog(cmd *cobra.Command) (*catalog.Catalog, error) {
	if p, _ := cmd.Flags().GetString("content"); p != "" {
		return catalog.LoadFile(p)
	}
	return catalog.Default(), nil
}

// resolveValidator builds the grading backend: a provider-backed
// validator when LLM credentials are discoverable, the simulated one
// otherwise.
func resolveValidator(ctx context.Context, logger *slog.Logger) quest.Validator {
	cfg, ok := llm.DiscoverConfig()
	if !ok {
		fmt.Fprintln(os.Stderr, "LLM provider not configured; using simulated grading.")
		return validator.NewSimulated(seededSource())
	}
	provider, err := llm.NewProvider(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "LLM provider unavailable:", err)
		fmt.Fprintln(os.Stderr, "Falling back to simulated grading.")
		return validator.NewSimulated(seededSource())
	}
	return validator.NewLLM(provider, validator.DefaultConfig())
}

func seededSource() rand.Source {
	now := uint64(time.Now().UnixNano())
	return rand.NewPCG(now, now>>32)
}

// buildEngine opens the database, wires repositories and returns a
// loaded engine. The caller closes the returned handle.
func buildEngine(cmd *cobra.Command) (*engine.Engine, engine.Repos, *sql.DB, error) {
	ctx := cmd.Context()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, engine.Repos{}, nil, fmt.Errorf("resolve database path: %w", err)
	}
	conn, err := db.OpenDB(dbPath)
	if err != nil {
		return nil, engine.Repos{}, nil, fmt.Errorf("open database: %w", err)
	}

	cat, err := resolveCatalog(cmd)
	if err != nil {
		conn.Close()
		return nil, engine.Repos{}, nil, fmt.Errorf("load content: %w", err)
	}

	logger := newLogger()
	bus := events.NewBus(logger)
	if err := announceMilestones(bus, cmd.OutOrStdout()); err != nil {
		conn.Close()
		return nil, engine.Repos{}, nil, fmt.Errorf("subscribe notifications: %w", err)
	}

	repos := engine.Repos{
		Profile:       repository.NewSQLiteProfileRepo(conn),
		QuestProgress: repository.NewSQLiteQuestProgressRepo(conn),
		Concept:       repository.NewSQLiteConceptProgressRepo(conn),
		Achievements:  repository.NewSQLiteAchievementRepo(conn),
		ValidationLog: repository.NewSQLiteValidationLogRepo(conn),
		Knowledge:     repository.NewSQLiteKnowledgeResultRepo(conn),
	}

	eng, err := engine.New(engine.Options{
		Catalog:   cat,
		Validator: resolveValidator(ctx, logger),
		Logger:    logger,
		Bus:       bus,
		Repos:     repos,
	})
	if err != nil {
		conn.Close()
		return nil, engine.Repos{}, nil, err
	}
	if err := eng.Load(ctx); err != nil {
		conn.Close()
		return nil, engine.Repos{}, nil, fmt.Errorf("load saved progress: %w", err)
	}
	return eng, repos, conn, nil
}
