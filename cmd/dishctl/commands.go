package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	appdish "github.com/alchemorsel/dishgen/internal/application/dish"
	"github.com/alchemorsel/dishgen/internal/domain/dish"
	"github.com/alchemorsel/dishgen/internal/infrastructure/config"
	gormrepo "github.com/alchemorsel/dishgen/internal/infrastructure/persistence/gorm"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/migrations"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/postgres"
	"github.com/alchemorsel/dishgen/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func runMigrate(ctx context.Context, cfg *config.Config, log *zap.Logger, args []string) error {
	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrate requires the postgres driver, configured driver is %q", cfg.Database.Driver)
	}
	if len(args) == 0 {
		return fmt.Errorf("migrate needs one of: up, down, version, force <n>")
	}

	ctx, cancel := commandTimeout(ctx)
	defer cancel()

	cm, err := postgres.NewConnectionManager(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cm.Close()

	sqlDB, err := cm.GetDB().DB()
	if err != nil {
		return err
	}

	m, err := migrations.New(sqlDB, cfg.Database.Database, log)
	if err != nil {
		return err
	}
	defer m.Close()

	switch args[0] {
	case "up":
		return m.Up()
	case "down":
		return m.Down()
	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version %d (dirty: %t)\n", version, dirty)
		return nil
	case "force":
		if len(args) < 2 {
			return fmt.Errorf("force needs a version")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[1], err)
		}
		return m.Force(version)
	default:
		return fmt.Errorf("unknown migrate action %q", args[0])
	}
}

func runRebuildLikes(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	ctx, cancel := commandTimeout(ctx)
	defer cancel()

	db, closeDB, err := openDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeDB()

	projection := appdish.NewProjection(gormrepo.NewDishCatalog(db), log)
	rebuilt, err := projection.RebuildAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("rebuilt like counts for %d dishes\n", rebuilt)
	return nil
}

func runGenerate(args []string, out io.Writer) int {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	ingredients := fs.String("ingredients", "", "comma separated ingredient names")
	count := fs.Int("count", 5, "number of names to generate")
	seed := fs.Uint64("seed", 0, "fixed random seed, 0 for a random one")

	if err := fs.Parse(args); err != nil {
		return exitCodeUsage
	}
	if *count < 1 {
		fmt.Fprintln(os.Stderr, "count must be at least 1")
		return exitCodeUsage
	}

	generator := dish.NewGenerator()
	if *seed != 0 {
		generator = dish.NewSeededGenerator(*seed)
	}

	names, err := generator.Names(splitIngredients(*ingredients), *count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "generate: %v\n", err)
		return exitCodeFailure
	}

	for _, name := range names {
		fmt.Fprintln(out, name)
	}
	return exitCodeSuccess
}

// openDatabase connects with the configured driver the same way the API does
func openDatabase(ctx context.Context, cfg *config.Config, log *zap.Logger) (*gorm.DB, func(), error) {
	if cfg.Database.Driver == "postgres" {
		cm, err := postgres.NewConnectionManager(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return cm.GetDB(), func() { _ = cm.Close() }, nil
	}

	gormLog := gormrepo.NewLogger(log.Named("gorm"), cfg.Database.LogLevel, cfg.Database.SlowQueryThreshold)
	db, err := sqlite.SetupDatabase(cfg.Database.Path, gormLog)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { _ = sqlite.Close(db) }, nil
}
