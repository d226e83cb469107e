package deadletter

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type Repository struct {
	log logger.Logger
	db  *sqlx.DB
}

func New(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{log: log, db: db}
}

// Record durably stores a message that exhausted its retry budget.
func (r *Repository) Record(ctx context.Context, msg models.NotificationMessage, reason string, attempts int) error {
	const op = "repository.deadletter.Record"

	letterUUID, err := uuid.NewUUID()
	if err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: generate uuid: %w", op, err)
	}

	const query = `
		INSERT INTO "dead_letter" (uuid, subscription_uuid, channel, endpoint, title, body, idempotency_key, reason, attempts)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	if _, err = r.db.ExecContext(ctx, query,
		letterUUID, msg.SubscriptionUUID, msg.Channel, msg.Endpoint, msg.Title, msg.Body, msg.IdempotencyKey, reason, attempts,
	); err != nil {
		r.log.Error(op, logger.Err(err))
		return fmt.Errorf("%s: execute statement: %w", op, err)
	}

	return nil
}

// List returns dead letters newest first for the operator surface.
func (r *Repository) List(ctx context.Context) ([]models.DeadLetter, error) {
	const op = "repository.deadletter.List"

	const query = `
		SELECT uuid, subscription_uuid, channel, endpoint, title, body, idempotency_key, reason, attempts, created_at
			FROM "dead_letter"
			ORDER BY created_at DESC
	`

	var letters []models.DeadLetter
	if err := r.db.SelectContext(ctx, &letters, query); err != nil {
		r.log.Error(op, logger.Err(err))
		return nil, fmt.Errorf("%s: execute statement: %w", op, err)
	}

	return letters, nil
}
