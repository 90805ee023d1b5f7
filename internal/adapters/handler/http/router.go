package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Poll     *PollHandler
	Response *ResponseHandler
	Results  *ResultsHandler
	Auth     *AuthHandler
	User     *UserHandler
	Admin    *AdminHandler
}

func NewHandler(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(CORS(allowedOrigins))
	r.Use(Authenticate)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.Auth.Register)
		r.Post("/login", h.Auth.Login)
		r.Post("/google/callback", h.Auth.GoogleCallback)
		r.Post("/refresh", h.Auth.Refresh)
		r.Post("/logout", h.Auth.Logout)
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/polls", func(r chi.Router) {
			r.Get("/", h.Poll.ListPolls)
			r.Get("/{id}", h.Poll.GetPoll)
			r.Get("/{id}/qr", h.Poll.ShareQR)
			r.Get("/{id}/admission", h.Response.Admission)
			r.Post("/{id}/responses", h.Response.Submit)
			r.Get("/{id}/results", h.Results.GetResults)
			r.Get("/{id}/results/export", h.Results.Export)

			r.Group(func(r chi.Router) {
				r.Use(RequireAuth)
				r.Post("/", h.Poll.PublishPoll)
				r.Delete("/{id}", h.Poll.DeletePoll)
				r.Get("/{id}/responses", h.Results.ListResponses)
			})
		})

		r.Route("/users/me", func(r chi.Router) {
			r.Use(RequireAuth)
			r.Get("/", h.User.GetMe)
			r.Get("/polls", h.Poll.ListMyPolls)
			r.Put("/email", h.User.UpdateEmail)
			r.Put("/password", h.User.UpdatePassword)
			r.Delete("/", h.User.DeleteAccount)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin)
			r.Get("/users", h.Admin.ListUsers)
			r.Delete("/users/{id}", h.Admin.DeleteUser)
			r.Get("/polls", h.Admin.ListPolls)
			r.Delete("/polls/{id}", h.Admin.DeletePoll)
		})
	})

	return r
}
