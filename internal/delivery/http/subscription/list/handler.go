package list

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type SubscriptionLister interface {
	List(ctx context.Context) ([]models.Subscription, error)
}

type Handler struct {
	log logger.Logger

	lister SubscriptionLister
}

func NewHandler(log logger.Logger, lister SubscriptionLister) *Handler {
	return &Handler{
		log:    log,
		lister: lister,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.lister.List(r.Context())
	if err != nil {
		h.log.Error("failed to list subscriptions", logger.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if subs == nil {
		subs = []models.Subscription{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err = json.NewEncoder(w).Encode(subs); err != nil {
		h.log.Error("failed to encode response", logger.Err(err))
	}
}
