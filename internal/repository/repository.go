package repository

import (
	"github.com/jmoiron/sqlx"

	"github.com/tomocrafter/takya-notifier/internal/repository/deadletter"
	"github.com/tomocrafter/takya-notifier/internal/repository/item"
	"github.com/tomocrafter/takya-notifier/internal/repository/subscription"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type Repository struct {
	Items         *item.Repository
	Subscriptions *subscription.Repository
	DeadLetters   *deadletter.Repository
}

func NewRepository(log logger.Logger, db *sqlx.DB) *Repository {
	return &Repository{
		Items:         item.New(log, db),
		Subscriptions: subscription.New(log, db),
		DeadLetters:   deadletter.New(log, db),
	}
}
