package unregister

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	internalErrors "github.com/tomocrafter/takya-notifier/internal/lib/errors"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type SubscriptionDeleter interface {
	Delete(ctx context.Context, subscriptionUUID uuid.UUID) error
}

type Handler struct {
	log logger.Logger

	deleter SubscriptionDeleter
}

func NewHandler(log logger.Logger, deleter SubscriptionDeleter) *Handler {
	return &Handler{
		log:     log,
		deleter: deleter,
	}
}

func (h *Handler) Unregister(w http.ResponseWriter, r *http.Request) {
	subscriptionUUID, err := uuid.Parse(chi.URLParam(r, "uuid"))
	if err != nil {
		http.Error(w, "invalid subscription uuid", http.StatusBadRequest)
		return
	}

	if err = h.deleter.Delete(r.Context(), subscriptionUUID); err != nil {
		if errors.Is(err, internalErrors.ErrSubscriptionNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete subscription", logger.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
