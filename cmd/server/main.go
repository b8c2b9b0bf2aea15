package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/biblio-app/biblio/internal/config"
	"github.com/biblio-app/biblio/internal/database"
	"github.com/biblio-app/biblio/internal/handlers"
	"github.com/biblio-app/biblio/internal/middleware"
	"github.com/biblio-app/biblio/internal/repository"
	"github.com/biblio-app/biblio/internal/services"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	gin.SetMode(cfg.Server.Mode)

	db, err := database.New(cfg)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redis, err := database.NewRedis(cfg)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redis.Close()

	store := services.NewSQLStore(repository.NewStore(db.Pool))
	storeTimeout := time.Duration(cfg.Lending.StoreTimeoutSeconds) * time.Second

	policyService := services.NewPolicyService(store, cfg.Lending, logger)
	notifyService := services.NewNotifyService(redis.Client, logger)
	fineService := services.NewFineService(store, logger).WithStoreTimeout(storeTimeout)
	reservationService := services.NewReservationService(store, policyService, notifyService, logger).WithStoreTimeout(storeTimeout)
	loanService := services.NewLoanService(store, policyService, fineService, reservationService, logger).WithStoreTimeout(storeTimeout)
	authService := services.NewAuthService(store, cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour, redis.Client, logger)
	userService := services.NewUserService(store, logger)
	bookService := services.NewBookService(store, logger)
	copyService := services.NewCopyService(store, logger)
	availabilityService := services.NewAvailabilityService(store)
	catalogService := services.NewCatalogService(store, logger)
	settingsService := services.NewSettingsService(store, logger)
	dashboardService := services.NewDashboardService(store, logger)

	sweepInterval := time.Duration(cfg.Lending.SweepIntervalMinutes) * time.Minute
	sweeper := services.NewSweeper(reservationService, sweepInterval, logger)

	r := gin.New()

	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(redis.Client)
	authMiddleware := middleware.NewAuthMiddleware(authService)

	healthHandler := handlers.NewHealthHandler(db, redis)
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	bookHandler := handlers.NewBookHandler(bookService, copyService, availabilityService)
	copyHandler := handlers.NewCopyHandler(copyService)
	loanHandler := handlers.NewLoanHandler(loanService)
	reservationHandler := handlers.NewReservationHandler(reservationService, sweeper)
	fineHandler := handlers.NewFineHandler(fineService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)
	settingsHandler := handlers.NewSettingsHandler(settingsService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)

	public := r.Group("/api/v1")
	{
		public.GET("/health", healthHandler.Health)
		public.GET("/ready", healthHandler.Ready)

		auth := public.Group("/auth")
		auth.Use(rateLimiter.Limit(middleware.RateLimit{Scope: "auth", Requests: 10, Window: time.Minute}))
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
		}

		// public catalog browsing
		public.GET("/books", bookHandler.ListBooks)
		public.GET("/books/search", bookHandler.SearchBooks)
		public.GET("/books/:id", bookHandler.GetBook)
		public.GET("/books/:id/copies", bookHandler.ListBookCopies)
		public.GET("/books/:id/availability", bookHandler.GetBookAvailability)
		public.GET("/authors", catalogHandler.ListAuthors)
		public.GET("/authors/:id", catalogHandler.GetAuthor)
		public.GET("/publishers", catalogHandler.ListPublishers)
		public.GET("/publishers/:id", catalogHandler.GetPublisher)
		public.GET("/categories", catalogHandler.ListCategories)
		public.GET("/categories/:id", catalogHandler.GetCategory)
	}

	protected := r.Group("/api/v1")
	protected.Use(authMiddleware.RequireAuth())
	protected.Use(rateLimiter.Limit(middleware.RateLimit{Scope: "api", Requests: 120, Window: time.Minute}))
	{
		protected.GET("/profile", authHandler.Me)
		protected.POST("/auth/logout", authHandler.Logout)

		// members reserve for themselves and manage their own holds
		protected.POST("/reservations", reservationHandler.CreateReservation)
		protected.GET("/reservations/:id", reservationHandler.GetReservation)
		protected.POST("/reservations/:id/cancel", reservationHandler.CancelReservation)

		staff := protected.Group("")
		staff.Use(authMiddleware.RequireStaff())
		{
			staff.POST("/books", bookHandler.CreateBook)
			staff.PUT("/books/:id", bookHandler.UpdateBook)
			staff.DELETE("/books/:id", bookHandler.DeleteBook)

			staff.POST("/copies", copyHandler.CreateCopy)
			staff.GET("/copies", copyHandler.ListCopies)
			staff.GET("/copies/:id", copyHandler.GetCopy)
			staff.GET("/copies/barcode/:barcode", copyHandler.GetCopyByBarcode)
			staff.PUT("/copies/:id", copyHandler.UpdateCopy)
			staff.DELETE("/copies/:id", copyHandler.DeleteCopy)

			staff.POST("/authors", catalogHandler.CreateAuthor)
			staff.PUT("/authors/:id", catalogHandler.UpdateAuthor)
			staff.DELETE("/authors/:id", catalogHandler.DeleteAuthor)
			staff.POST("/publishers", catalogHandler.CreatePublisher)
			staff.PUT("/publishers/:id", catalogHandler.UpdatePublisher)
			staff.DELETE("/publishers/:id", catalogHandler.DeletePublisher)
			staff.POST("/categories", catalogHandler.CreateCategory)
			staff.PUT("/categories/:id", catalogHandler.UpdateCategory)
			staff.DELETE("/categories/:id", catalogHandler.DeleteCategory)

			staff.POST("/users", userHandler.CreateUser)
			staff.GET("/users", userHandler.ListUsers)
			staff.GET("/users/:id", userHandler.GetUser)
			staff.PUT("/users/:id", userHandler.UpdateUser)
			staff.GET("/users/:id/loans", loanHandler.ListUserLoans)
			staff.GET("/users/:id/reservations", reservationHandler.ListUserReservations)
			staff.GET("/users/:id/fines", fineHandler.ListUserFines)

			staff.POST("/loans", loanHandler.IssueLoan)
			staff.GET("/loans", loanHandler.ListLoans)
			staff.GET("/loans/overdue", loanHandler.ListOverdueLoans)
			staff.GET("/loans/:id", loanHandler.GetLoan)
			staff.POST("/loans/:id/return", loanHandler.ReturnLoan)
			staff.POST("/loans/:id/lost", loanHandler.MarkLost)

			staff.GET("/reservations", reservationHandler.ListReservations)
			staff.GET("/books/:id/queue", reservationHandler.ListBookQueue)
			staff.POST("/reservations/:id/fulfill", reservationHandler.FulfillReservation)
			staff.POST("/reservations/expire", reservationHandler.ExpireReservations)

			staff.POST("/fines", fineHandler.IssueFine)
			staff.GET("/fines", fineHandler.ListFines)
			staff.GET("/fines/:id", fineHandler.GetFine)
			staff.POST("/fines/:id/pay", fineHandler.PayFine)

			staff.GET("/dashboard", dashboardHandler.GetStats)
		}

		admin := protected.Group("")
		admin.Use(authMiddleware.RequireAdmin())
		{
			admin.DELETE("/users/:id", userHandler.DeleteUser)
			admin.DELETE("/loans/:id", loanHandler.DeleteLoan)
			admin.DELETE("/fines/:id", fineHandler.DeleteFine)

			admin.GET("/settings", settingsHandler.ListSettings)
			admin.GET("/settings/:key", settingsHandler.GetSetting)
			admin.PUT("/settings/:key", settingsHandler.UpdateSetting)
		}
	}

	r.GET("/health", healthHandler.Health)

	// background sweep for expired holds
	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	defer stopSweeper()
	go sweeper.Start(sweepCtx)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Server.Port
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("Starting server", "port", port, "mode", cfg.Server.Mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	stopSweeper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
