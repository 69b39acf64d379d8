package wire

import (
	"net/http"

	"github.com/asimov86/ecommerce-api/internal/adaptor"
	"github.com/asimov86/ecommerce-api/internal/data/repository"
	"github.com/asimov86/ecommerce-api/internal/usecase"
	"github.com/asimov86/ecommerce-api/pkg/database"
	"github.com/asimov86/ecommerce-api/pkg/mailer"
	"github.com/asimov86/ecommerce-api/pkg/middleware"
	"github.com/asimov86/ecommerce-api/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies.
type App struct {
	Router *chi.Mux
}

// Wiring builds services, handlers and the router.
func Wiring(
	db database.PgxIface,
	repo *repository.Repository,
	mail mailer.Mailer,
	config *utils.Config,
	logger *zap.Logger,
) *App {
	service := usecase.NewService(db, repo, mail, config, logger)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, repo, config, logger)

	return &App{
		Router: router,
	}
}

func setupRouter(
	handler *adaptor.Handler,
	repo *repository.Repository,
	config *utils.Config,
	logger *zap.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireUser(r, handler.Auth, handler.User, repo, logger)
	wireProduct(r, handler.Product, repo, logger)
	wireCart(r, handler.Cart, repo, logger)
	wireOrder(r, handler.Order, repo, logger)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	return r
}
