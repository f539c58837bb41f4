package routes

import (
	"github.com/AlazarStudio/lfl-live/handlers"
	"github.com/AlazarStudio/lfl-live/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func SetupRoutes(
	router *chi.Mux,
	jwtSecret []byte,
	authHandler *handlers.AuthHandler,
	matchHandler *handlers.MatchHandler,
	liveHandler *handlers.LiveHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Post("/auth/login", authHandler.Login)

	// Публичные чтения
	router.Get("/referees", matchHandler.ListReferees)
	router.Get("/teams/{teamID}/roster", matchHandler.ListTeamRoster)

	router.Route("/matches/{matchID}", func(r chi.Router) {
		r.Get("/", matchHandler.GetMatch)
		r.Get("/events", matchHandler.ListEvents)
		r.Get("/participants", matchHandler.ListParticipants)
		r.Get("/mvp", liveHandler.GetRanking)

		// Операторские операции живой сессии
		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))

			r.Post("/session", liveHandler.OpenSession)
			r.Get("/session", liveHandler.GetSnapshot)
			r.Delete("/session", liveHandler.CloseSession)

			r.Post("/events", liveHandler.RecordEvent)
			r.Post("/finish", liveHandler.FinishMatch)

			r.Post("/clock/toggle", liveHandler.ToggleClock)
			r.Post("/half/next", liveHandler.AdvanceHalf)
			r.Post("/half/prev", liveHandler.RetreatHalf)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Put("/events/{eventID}", liveHandler.EditEvent)
		r.Delete("/events/{eventID}", liveHandler.DeleteEvent)
	})

	// Трансляция для табло и зрителей
	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeWs)
}
