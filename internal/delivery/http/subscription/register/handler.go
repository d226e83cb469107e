package register

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type SubscriptionCreator interface {
	Create(ctx context.Context, sub *models.Subscription) (uuid.UUID, error)
}

type Handler struct {
	log logger.Logger

	creator SubscriptionCreator
}

func NewHandler(log logger.Logger, creator SubscriptionCreator) *Handler {
	return &Handler{
		log:     log,
		creator: creator,
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var request RegisterRequest

	err := json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		h.log.Error("failed to decode request", logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err = request.validate(); err != nil {
		h.log.Error("failed to validate request", logger.Err(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	sub := request.toDTO()
	subscriptionUUID, err := h.creator.Create(r.Context(), &sub)
	if err != nil {
		h.log.Error("failed to create subscription", logger.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err = json.NewEncoder(w).Encode(
		map[string]string{
			"subscription_uuid": subscriptionUUID.String(),
		},
	); err != nil {
		h.log.Error("failed to encode response", logger.Err(err))
	}
}
