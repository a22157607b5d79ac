package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"redesocial/internal/handler"
	"redesocial/internal/httputil"
	"redesocial/internal/transport/http/middleware"
)

// RouterDeps holds the handlers the router wires up
type RouterDeps struct {
	JWTSecret string

	AuthHandler         *handler.AuthHandler
	UserHandler         *handler.UserHandler
	FriendshipHandler   *handler.FriendshipHandler
	PostHandler         *handler.PostHandler
	MessageHandler      *handler.MessageHandler
	NotificationHandler *handler.NotificationHandler
}

// NewRouter builds the chi router with all API routes
func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.AuthHandler.Register)
			r.Post("/login", deps.AuthHandler.Login)
			r.Post("/refresh", deps.AuthHandler.Refresh)
			r.Post("/logout", deps.AuthHandler.Logout)
		})

		// Everything below requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(deps.JWTSecret))

			r.Route("/users", func(r chi.Router) {
				r.Get("/", deps.UserHandler.List)
				r.Get("/{userID}", deps.UserHandler.GetByID)
			})

			r.Route("/friends", func(r chi.Router) {
				r.Get("/", deps.FriendshipHandler.ListFriends)
				r.Get("/requests", deps.FriendshipHandler.ListPending)
				r.Post("/requests/{userID}", deps.FriendshipHandler.SendRequest)
				r.Post("/requests/{userID}/accept", deps.FriendshipHandler.AcceptRequest)
				r.Delete("/requests/{userID}", deps.FriendshipHandler.RejectRequest)
			})

			r.Route("/posts", func(r chi.Router) {
				r.Get("/", deps.PostHandler.Feed)
				r.Post("/", deps.PostHandler.Create)
				r.Get("/likes", deps.PostHandler.LikeState)
				r.Post("/{postID}/like", deps.PostHandler.ToggleLike)
				r.Put("/{postID}", deps.PostHandler.Edit)
				r.Delete("/{postID}", deps.PostHandler.Delete)
			})

			r.Route("/messages", func(r chi.Router) {
				r.Post("/", deps.MessageHandler.Send)
				r.Get("/{userID}", deps.MessageHandler.ListSince)
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", deps.NotificationHandler.Feed)
				r.Get("/unread", deps.NotificationHandler.UnreadCount)
				r.Post("/read", deps.NotificationHandler.MarkAllRead)
			})
		})
	})

	return r
}
