// Command rebuild recomputes every derived aggregate of one wallet (or
// all wallets) directly against the database. Useful after restoring a
// backup or changing aggregate semantics.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/alaalsalam/hisabi-backend/internal/core/services"
	"github.com/alaalsalam/hisabi-backend/internal/platform/config"
	"github.com/alaalsalam/hisabi-backend/internal/repositories/database/pgsql"
	"github.com/alaalsalam/hisabi-backend/pkg/database"
)

func main() {
	walletID := flag.String("wallet", "", "wallet id to rebuild; empty rebuilds every wallet")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	repos := pgsql.NewRepositoryProvider(dbPool)
	recalc := services.NewRecalcService(repos.EntityRepo)

	ids := []string{*walletID}
	if *walletID == "" {
		ids, err = listWalletIDs(ctx, dbPool)
		if err != nil {
			logger.Error("Failed to list wallets", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	failures := 0
	for _, id := range ids {
		if err := recalc.RecalcWallet(ctx, id); err != nil {
			logger.Error("Rebuild failed", slog.String("wallet_id", id), slog.String("error", err.Error()))
			failures++
			continue
		}
		logger.Info("Rebuilt wallet aggregates", slog.String("wallet_id", id))
	}

	if failures > 0 {
		os.Exit(1)
	}
}

func listWalletIDs(ctx context.Context, pool *pgxpool.Pool) ([]string, error) {
	rows, err := pool.Query(ctx, `SELECT wallet_id FROM wallets ORDER BY wallet_id;`)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallets: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan wallet id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
