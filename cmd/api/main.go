package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/whopaid/whopaid/docs"
	"github.com/whopaid/whopaid/internal/balance"
	"github.com/whopaid/whopaid/internal/config"
	"github.com/whopaid/whopaid/internal/database"
	"github.com/whopaid/whopaid/internal/expense"
	"github.com/whopaid/whopaid/internal/group"
	"github.com/whopaid/whopaid/internal/user"
	"github.com/whopaid/whopaid/pkg/logging"
	mw "github.com/whopaid/whopaid/pkg/middleware"
)

// @title           WhoPaid API
// @version         1.0
// @description     Group expense splitting: groups, even splits, net balances, and who-owes-whom settlements.
// @BasePath        /api/v1
func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.Log.Level)

	db, err := database.NewPostgresConnection(cfg.DB.URL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to database")

	// User and group features reference each other through narrow interfaces:
	// registration promotes pending invitations, and group membership resolves
	// emails against the user directory.
	userRepo := user.NewRepository(db)
	groupRepo := group.NewRepository(db)

	userService := user.NewService(userRepo, groupRepo)
	userHandler := user.NewHandler(userService)

	groupService := group.NewService(groupRepo, userRepo)
	groupHandler := group.NewHandler(groupService)

	expenseRepo := expense.NewRepository(db)
	expenseService := expense.NewService(expenseRepo)
	expenseHandler := expense.NewHandler(expenseService)

	balanceRepo := balance.NewRepository(db)
	balanceService := balance.NewService(balanceRepo)
	balanceHandler := balance.NewHandler(balanceService)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(cfg.Auth.JWTSecret))

		r.Mount("/users", userHandler.Routes())
		r.Mount("/groups", groupHandler.Routes())
		r.Mount("/expenses", expenseHandler.Routes())
		r.Mount("/balances", balanceHandler.Routes())
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	slog.Info("server starting", "app", cfg.App.Name, "addr", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
