package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/velmir/quizduel-server/handlers"
	"github.com/velmir/quizduel-server/middleware"
)

func SetupRoutes(
	router *chi.Mux,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	matchHandler *handlers.MatchHandler,
	questionSetHandler *handlers.QuestionSetHandler,
	assetHandler *handlers.AssetHandler,
	webSocketHandler *handlers.WebSocketHandler,
	jwtSecret []byte,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/users", func(r chi.Router) {
		r.Post("/register", authHandler.RegisterHandler)
		r.Post("/login", authHandler.LoginHandler)
		r.Get("/leaderboard", userHandler.LeaderboardHandler)
		r.Get("/{username}", userHandler.ProfileHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Post("/", matchHandler.CreateMatchHandler)
		r.Post("/join", matchHandler.JoinMatchHandler)
		r.Post("/quick", matchHandler.QuickMatchHandler)
		r.Get("/code/{code}", matchHandler.GetMatchByCodeHandler)
		r.Get("/history/{playerName}", matchHandler.MatchHistoryHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
		r.Post("/{matchID}/start", matchHandler.StartMatchHandler)
		r.Post("/{matchID}/answer", matchHandler.SubmitAnswerHandler)
	})

	router.Route("/question-sets", func(r chi.Router) {
		r.Get("/", questionSetHandler.ListQuestionSetsHandler)
		r.Get("/{setID}", questionSetHandler.GetQuestionSetHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/", questionSetHandler.CreateQuestionSetHandler)
		})
	})

	router.Route("/assets", func(r chi.Router) {
		r.Get("/", assetHandler.ListAssetsHandler)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(jwtSecret))
			r.Post("/", assetHandler.UploadAssetHandler)
		})
	})

	router.Get("/ws/matches/{matchID}", webSocketHandler.ServeMatchWs)
}
