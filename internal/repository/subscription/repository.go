package subscription

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	internalErrors "github.com/tomocrafter/takya-notifier/internal/lib/errors"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

func (r *Repository) Create(ctx context.Context, sub *models.Subscription) (uuid.UUID, error) {
	const op = "repository.subscription.Create"

	subscriptionUUID, err := uuid.NewUUID()
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: generate uuid: %w", op, err)
	}

	const query = `
		INSERT INTO "subscription" (uuid, channel, endpoint, max_price, name_contains, kinds)
			VALUES ($1, $2, $3, $4, $5, $6)
	`

	kinds := sub.Filter.Kinds
	if kinds == nil {
		kinds = []string{}
	}

	if _, err = r.db.ExecContext(ctx, query,
		subscriptionUUID, sub.Channel, sub.Endpoint, sub.Filter.MaxPrice, sub.Filter.NameContains, pq.Array(kinds),
	); err != nil {
		r.log.Error(op, logger.Err(err))
		return uuid.Nil, fmt.Errorf("%s: execute statement: %w", op, err)
	}

	return subscriptionUUID, nil
}

// List returns every active subscription. The router holds these as
// read-only references for the duration of a single routing pass.
func (r *Repository) List(ctx context.Context) ([]models.Subscription, error) {
	const op = "repository.subscription.List"

	const query = `
		SELECT uuid, channel, endpoint, max_price, name_contains, kinds
			FROM "subscription"
			ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: execute statement: %w", op, err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		var maxPrice sql.NullInt64

		if err = rows.Scan(&sub.UUID, &sub.Channel, &sub.Endpoint, &maxPrice, &sub.Filter.NameContains, pq.Array(&sub.Filter.Kinds)); err != nil {
			r.log.Error(op, logger.Err(err))
			return nil, fmt.Errorf("%s: scan subscription: %w", op, err)
		}
		if maxPrice.Valid {
			price := int(maxPrice.Int64)
			sub.Filter.MaxPrice = &price
		}

		subs = append(subs, sub)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("%s: rows: %w", op, rows.Err())
	}

	return subs, nil
}

func (r *Repository) Delete(ctx context.Context, subscriptionUUID uuid.UUID) error {
	const op = "repository.subscription.Delete"

	const query = `DELETE FROM "subscription" WHERE uuid = $1`

	result, err := r.db.ExecContext(ctx, query, subscriptionUUID)
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: execute statement: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if affected == 0 {
		return internalErrors.ErrSubscriptionNotFound
	}

	return nil
}
