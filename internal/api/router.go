package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/mzhyrko/accounts-be/internal/api/handlers"
	"github.com/mzhyrko/accounts-be/internal/auth"
	"github.com/mzhyrko/accounts-be/internal/services"
)

// NewRouter creates and configures a new Chi router.
func NewRouter(codec *auth.TokenCodec, userService services.UserServiceProvider, avatarService services.AvatarServiceProvider, avatarsDir string) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS configuration for development
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // Adjust for your frontend URL
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	userHandler := handlers.NewUserHandler(userService, avatarService)
	authenticate := auth.Middleware(codec, userService)

	// Public endpoints
	r.Post("/register", userHandler.Register)
	r.Post("/login", userHandler.Login)
	r.Patch("/users/{id}", userHandler.UpdateSubscription)

	// Ingested avatars are served as static files
	r.Handle("/avatars/*", http.StripPrefix("/avatars/", http.FileServer(http.Dir(avatarsDir))))

	// Endpoints behind the authorization gate
	r.Group(func(r chi.Router) {
		r.Use(authenticate)
		r.Get("/current", userHandler.Current)
		r.Post("/logout", userHandler.Logout)
		r.Patch("/avatar", userHandler.UpdateAvatar)
	})

	return r
}
