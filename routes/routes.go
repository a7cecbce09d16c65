package routes

import (
	"net/http"
	"time"

	"github.com/Dosada05/softball-tournament/handlers"
	"github.com/Dosada05/softball-tournament/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

type Handlers struct {
	Team       *handlers.TeamHandler
	Game       *handlers.GameHandler
	Tournament *handlers.TournamentHandler
	WebSocket  *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, allowedOrigins []string, logger zerolog.Logger) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID(logger))
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Get("/ws", h.WebSocket.ServeWs)

	router.Route("/api", func(r chi.Router) {
		r.Use(chiMiddleware.Timeout(30 * time.Second))

		r.Get("/teams", h.Team.ListTeams)
		r.Post("/teams/{teamID}/players", h.Team.AddPlayers)
		r.Patch("/players/{playerID}", h.Team.UpdatePlayer)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.Game.ListGames)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", h.Game.GetGame)
				r.Patch("/", h.Game.UpdateGame)
				r.Put("/innings/{inning}/{side}", h.Game.UpdateInning)
				r.Post("/swap", h.Game.SwapTeams)
				r.Put("/batting/{playerID}", h.Game.SaveBatting)
				r.Put("/pitching/{playerID}", h.Game.SavePitching)
			})
		})

		r.Get("/standings", h.Tournament.GetStandings)
		r.Get("/leaders", h.Tournament.GetLeaders)
		r.Get("/champion", h.Tournament.GetChampion)
		r.Post("/reset", h.Tournament.Reset)
		r.Post("/export", h.Tournament.Export)
	})

	return router
}
