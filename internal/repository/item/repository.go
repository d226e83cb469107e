package item

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

// Repository owns the persisted last-known snapshot. The pipeline only ever
// holds transient copies of what is stored here.
type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

// Snapshot reads the full last-known item set keyed by order id. The second
// return value reports whether a baseline was ever committed: a store that
// has never seen a commit is the bootstrap case, which is distinct from a
// committed snapshot that happens to be empty.
func (r *Repository) Snapshot(ctx context.Context) (models.Snapshot, bool, error) {
	const op = "repository.item.Snapshot"

	var committed bool
	if err := r.db.GetContext(ctx, &committed, `SELECT EXISTS (SELECT 1 FROM "snapshot_state")`); err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, false, fmt.Errorf("%s: check baseline: %w", op, err)
	}

	const query = `SELECT order_id, name, kind, exterior, price, has_sold, is_stattrak FROM "item"`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, false, fmt.Errorf("%s: execute statement: %w", op, err)
	}
	defer rows.Close()

	snapshot := make(models.Snapshot)
	for rows.Next() {
		var item models.Item
		var kind sql.NullString
		var exterior sql.NullString

		if err = rows.Scan(&item.OrderID, &item.Name, &kind, &exterior, &item.Price, &item.HasSold, &item.IsStattrak); err != nil {
			r.log.Error(op, logger.Err(err))
			return nil, false, fmt.Errorf("%s: scan item: %w", op, err)
		}
		if kind.Valid {
			item.Kind = &kind.String
		}
		if exterior.Valid {
			ext := models.Exterior(exterior.String)
			item.Exterior = &ext
		}

		snapshot[item.OrderID] = item
	}
	if rows.Err() != nil {
		return nil, false, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return snapshot, committed, nil
}

// ReplaceSnapshot commits the new snapshot as the last-known state in a
// single serializable transaction. Either the whole snapshot lands or none
// of it does, so a crash mid-cycle leaves the previous baseline intact and
// the next cycle re-diffs from durably committed state.
func (r *Repository) ReplaceSnapshot(ctx context.Context, items []models.Item) (err error) {
	const op = "repository.item.ReplaceSnapshot"

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: begin transaction: %w", op, err)
	}

	defer func() {
		if err != nil {
			if rollBackErr := tx.Rollback(); rollBackErr != nil {
				r.log.Error(op, logger.Err(rollBackErr))
				err = errors.Join(err, fmt.Errorf("%s: rollback transaction: %w", op, rollBackErr))
			}
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM "item"`); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: clear items: %w", op, err)
	}

	if len(items) > 0 {
		const insertQuery = `INSERT INTO "item" (order_id, name, kind, exterior, price, has_sold, is_stattrak) VALUES %s`

		var values []interface{}
		var placeholders []string

		for i, item := range items {
			values = append(values, item.OrderID, item.Name, item.Kind, item.Exterior, item.Price, item.HasSold, item.IsStattrak)

			argID := i * 7

			placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)",
				argID+1, argID+2, argID+3, argID+4, argID+5, argID+6, argID+7))
		}

		fullQuery := fmt.Sprintf(insertQuery, strings.Join(placeholders, ","))

		if _, err = tx.ExecContext(ctx, fullQuery, values...); err != nil {
			r.log.Error(op, logger.Err(err))
			return fmt.Errorf("%s: insert items: %w", op, err)
		}
	}

	const markQuery = `
		INSERT INTO "snapshot_state" (id, committed_at) VALUES (TRUE, now())
			ON CONFLICT (id) DO UPDATE SET committed_at = now()
	`
	if _, err = tx.ExecContext(ctx, markQuery); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: mark baseline: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: commit transaction: %w", op, err)
	}

	return nil
}
