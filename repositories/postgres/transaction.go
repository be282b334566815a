package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/EcoFlowJS/ecoflow-authentication/models"
	"go.uber.org/zap"
)

// executor is satisfied by both *sql.DB and *sql.Tx
type executor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

type seedTxKey struct{}

// executorFor returns the seed transaction carried by ctx, or the pool
func executorFor(ctx context.Context, db *DB) executor {
	if tx, ok := ctx.Value(seedTxKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.DB
}

// Seed stores every client in a single transaction. Nothing is stored when
// any registration is invalid or fails to write.
func (r *OAuthClientRepository) Seed(ctx context.Context, clients []*models.OAuthClient) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}

	txCtx := context.WithValue(ctx, seedTxKey{}, tx)
	for i, c := range clients {
		if err := r.Upsert(txCtx, c); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				r.logger.Error("failed to rollback seed transaction",
					zap.Error(rbErr),
					zap.NamedError("original_error", err),
				)
			}
			return fmt.Errorf("seed client %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed transaction: %w", err)
	}

	r.logger.Info("oauth clients seeded", zap.Int("count", len(clients)))
	return nil
}
