package list

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tomocrafter/takya-notifier/internal/domain/models"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type DeadLetterLister interface {
	List(ctx context.Context) ([]models.DeadLetter, error)
}

type Handler struct {
	log logger.Logger

	lister DeadLetterLister
}

func NewHandler(log logger.Logger, lister DeadLetterLister) *Handler {
	return &Handler{
		log:    log,
		lister: lister,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	letters, err := h.lister.List(r.Context())
	if err != nil {
		h.log.Error("failed to list dead letters", logger.Err(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if letters == nil {
		letters = []models.DeadLetter{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err = json.NewEncoder(w).Encode(letters); err != nil {
		h.log.Error("failed to encode response", logger.Err(err))
	}
}
