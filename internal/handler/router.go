package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-manager-api/pkg/respond"
)

type RouterDeps struct {
	Accounts *AccountHandler
	Tasks    *TaskHandler
	Auth     Authenticator
	Logger   *zap.Logger
}

// NewRouter wires every endpoint. All task routes sit behind RequireUser.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"message": "task manager API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respond.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})

	requireUser := RequireUser(d.Auth, d.Logger)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", d.Accounts.Register)
		r.Post("/login", d.Accounts.Login)
		r.With(requireUser).Get("/me", d.Accounts.Me)
	})

	r.Route("/tasks", func(r chi.Router) {
		r.Use(requireUser)
		r.Post("/", d.Tasks.Create)
		r.Get("/", d.Tasks.List)
		r.Get("/stats", d.Tasks.Stats)
		r.Get("/{id}", d.Tasks.Get)
		r.Put("/{id}", d.Tasks.Update)
		r.Patch("/{id}", d.Tasks.Update)
		r.Delete("/{id}", d.Tasks.Delete)
	})

	return r
}
