package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zhouzirui/z-butler/backend/internal/handler/session"
	speechhandler "github.com/zhouzirui/z-butler/backend/internal/handler/speech"
	middlewarePkg "github.com/zhouzirui/z-butler/backend/internal/middleware"
	speechsvc "github.com/zhouzirui/z-butler/backend/internal/service/speech"
	"github.com/zhouzirui/z-butler/backend/pkg/utils"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(resolver session.Resolver, dispatcher *speechsvc.Dispatcher, defaultEngine string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{"message": "Z Butler backend is alive!"})
	})

	sessionHandler := session.New(resolver, dispatcher, defaultEngine)
	sessionHandler.RegisterRoutes(r)

	r.Route("/api", func(api chi.Router) {
		speechHandler := speechhandler.New(dispatcher)
		speechHandler.RegisterRoutes(api)
	})

	return r
}
