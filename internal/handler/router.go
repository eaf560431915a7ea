package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/starkline/phone-mirror/backend/internal/handler/chat"
	notifyhandler "github.com/starkline/phone-mirror/backend/internal/handler/notify"
	personahandler "github.com/starkline/phone-mirror/backend/internal/handler/persona"
	middlewarePkg "github.com/starkline/phone-mirror/backend/internal/middleware"
	personaModel "github.com/starkline/phone-mirror/backend/internal/model/persona"
	chatService "github.com/starkline/phone-mirror/backend/internal/service/chat"
	notifyService "github.com/starkline/phone-mirror/backend/internal/service/notify"
	"github.com/starkline/phone-mirror/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(personas personaModel.Store, chatSvc *chatService.Service, relay *notifyService.Relay) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	personaHandler := personahandler.New(personas)
	chatHandler := chathandler.New(chatSvc)
	notifyHandler := notifyhandler.New(relay)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		personaHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		notifyHandler.RegisterRoutes(api)
	})

	return r
}
