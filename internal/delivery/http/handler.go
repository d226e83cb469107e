package notifier_http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	deadletters "github.com/tomocrafter/takya-notifier/internal/delivery/http/deadletter/list"
	"github.com/tomocrafter/takya-notifier/internal/delivery/http/subscription/list"
	"github.com/tomocrafter/takya-notifier/internal/delivery/http/subscription/register"
	"github.com/tomocrafter/takya-notifier/internal/delivery/http/subscription/unregister"
	"github.com/tomocrafter/takya-notifier/pkg/logger"
)

type Handler struct {
	log logger.Logger

	register    *register.Handler
	list        *list.Handler
	unregister  *unregister.Handler
	deadLetters *deadletters.Handler
}

func NewHandler(
	log logger.Logger,
	creator register.SubscriptionCreator,
	lister list.SubscriptionLister,
	deleter unregister.SubscriptionDeleter,
	letterLister deadletters.DeadLetterLister,
) *Handler {
	return &Handler{
		log:         log,
		register:    register.NewHandler(log, creator),
		list:        list.NewHandler(log, lister),
		unregister:  unregister.NewHandler(log, deleter),
		deadLetters: deadletters.NewHandler(log, letterLister),
	}
}

func (h *Handler) InitRoutes() http.Handler {
	mux := chi.NewRouter()

	mux.Route("/subscription", func(r chi.Router) {
		r.Post("/", h.register.Register)
		r.Get("/", h.list.List)
		r.Delete("/{uuid}", h.unregister.Unregister)
	})

	mux.Get("/dead-letters", h.deadLetters.List)

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
