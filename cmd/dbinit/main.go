// dbinit converges the wexcommerce database to its desired shape:
// collections, standard indexes, the product text index, the token
// TTL index, and the category/value seed data. It exits non-zero when
// any part fails so deploy tooling can refuse to start the
// application against a half-initialized database.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pepe57/wexcommerce/internal/catalog"
	"github.com/pepe57/wexcommerce/internal/config"
	"github.com/pepe57/wexcommerce/internal/database"
	"github.com/pepe57/wexcommerce/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbinit:", err)
		return 1
	}

	logger := logging.New(cfg.LogLevel, false)
	defer logger.Sync()

	manager, err := database.NewManager(database.Config{
		URI:            cfg.DBURI,
		Database:       cfg.DBName,
		CleanStart:     cfg.CleanStart,
		ConnectTimeout: cfg.ConnectTimeout,
		QueryTimeout:   cfg.QueryTimeout,
	}, logger)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dbinit:", err)
		return 1
	}

	ctx := context.Background()

	if !manager.Connect(ctx) {
		return 1
	}
	defer manager.Close(ctx)

	catalogSvc := catalog.NewService(manager, cfg.Languages, logger)

	if !manager.Initialize(ctx, catalogSvc.Routine()) {
		return 1
	}

	return 0
}
