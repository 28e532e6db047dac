package app

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/homegame/chipledger/internal/auth"
	"github.com/homegame/chipledger/internal/handler"
	"github.com/homegame/chipledger/internal/identity"
	"github.com/homegame/chipledger/internal/repository"
	"github.com/homegame/chipledger/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	Redis              *redis.Client // may be nil; identity cache degrades gracefully
	JWTMgr             *auth.JWTManager
	Logger             *slog.Logger
	CORSAllowedOrigins string
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	gameRepo := repository.NewGameRepository()
	clubRepo := repository.NewClubRepository()
	userRepo := repository.NewUserRepository()
	adminRepo := repository.NewAdminUserRepository()
	outboxRepo := repository.NewOutboxRepository()

	// Collaborators
	resolver := identity.NewResolver(userRepo, pool, deps.Redis, logger)

	// Services
	gameSvc := service.NewGameService(pool, gameRepo, clubRepo, outboxRepo, resolver, logger)
	authSvc := service.NewAuthService(pool, adminRepo, jwtMgr)

	// Handlers
	gameHandler := handler.NewGameHandler(gameSvc, resolver)
	authHandler := handler.NewAuthHandler(authSvc)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSAllowedOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Operator auth (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
	})

	// Buy-in requests: players request their own, operators anyone's.
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateAny(jwtMgr))
		r.Post("/games/{gameID}/players/{userID}/buyins", gameHandler.RequestBuyIn)
	})

	// Operator-authenticated game commands
	r.Route("/games", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Post("/", gameHandler.CreateGame)
		r.Get("/active", gameHandler.GetActiveGame)
		r.Get("/{gameID}", gameHandler.GetGame)

		r.Post("/{gameID}/players", gameHandler.AddPlayer)
		r.Delete("/{gameID}/players/{userID}", gameHandler.RemovePlayer)

		r.Post("/{gameID}/players/{userID}/buyins/{requestID}/approve", gameHandler.ApproveBuyIn)
		r.Post("/{gameID}/players/{userID}/buyins/{requestID}/reject", gameHandler.RejectBuyIn)
		r.Delete("/{gameID}/players/{userID}/buyins/{requestID}", gameHandler.CancelBuyIn)
		r.Post("/{gameID}/buyins/admin", gameHandler.AdminAddBuyIn)

		r.Post("/{gameID}/players/{userID}/cashout", gameHandler.CashOutPlayer)
		r.Post("/{gameID}/end", gameHandler.EndGame)

		r.Post("/{gameID}/settlement", gameHandler.CalculateSettlement)
		r.Get("/{gameID}/settlement", gameHandler.GetSettlement)
	})

	return r
}
