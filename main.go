package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Amund211/timba/internal/adapters/cache"
	"github.com/Amund211/timba/internal/adapters/database"
	"github.com/Amund211/timba/internal/adapters/notifier"
	"github.com/Amund211/timba/internal/adapters/rules"
	"github.com/Amund211/timba/internal/adapters/saverepository"
	"github.com/Amund211/timba/internal/app"
	"github.com/Amund211/timba/internal/config"
	"github.com/Amund211/timba/internal/logging"
	"github.com/Amund211/timba/internal/ports"
	"github.com/Amund211/timba/internal/reporting"
	"github.com/Amund211/timba/internal/telemetry"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	instanceID := uuid.New().String()
	logger := slog.New(
		logging.NewTracingLogHandler(slog.NewJSONHandler(os.Stdout, nil)),
	).With("instanceID", instanceID)

	fail := func(msg string, args ...any) {
		logger.Error(msg, args...)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	conf, err := config.ConfigFromEnv()
	if err != nil {
		fail("Failed to load config", "error", err.Error())
	}
	logger.Info("Loaded config", "config", conf.NonSensitiveString())

	if conf.OTelEnabled() {
		shutdownOTel, err := telemetry.SetupOTelSDK(ctx, "timba")
		if err != nil {
			fail("Failed to initialize OpenTelemetry", "error", err.Error())
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				logger.Error("Failed to shut down OpenTelemetry", "error", err.Error())
			}
		}()
		logger.Info("Initialized OpenTelemetry")
	}

	sentryMiddleware, flush, err := reporting.NewSentryMiddlewareOrMock(conf)
	if err != nil {
		fail("Failed to initialize Sentry", "error", err.Error())
	}
	defer flush()
	logger.Info("Initialized Sentry middleware")

	gameRules, err := rules.Load(conf.RulesPath())
	if err != nil {
		fail("Failed to load rules", "error", err.Error(), "path", conf.RulesPath())
	}
	logger.Info("Loaded rules", "upgrades", len(gameRules.Upgrades()), "achievements", len(gameRules.Achievements()))

	var store saverepository.SaveRepository
	switch conf.Store() {
	case config.StoreSQLite:
		logger.Info("Opening sqlite database", "path", conf.SQLitePath())
		db, err := database.NewSQLiteDatabase(ctx, conf.SQLitePath())
		if err != nil {
			fail("Failed to open sqlite database", "error", err.Error())
		}
		defer db.Close()

		store = saverepository.NewSQLite(db, gameRules, time.Now)
	default:
		logger.Info("Initializing database connection")
		db, err := database.NewPostgresDatabaseFromConfig(conf)
		if err != nil {
			fail("Failed to initialize database connection", "error", err.Error())
		}
		defer db.Close()
		logger.Info("Initialized database connection")

		repositorySchemaName := database.GetSchemaName(!conf.IsProduction())

		err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, repositorySchemaName)
		if err != nil {
			fail("Failed to migrate database", "error", err.Error())
		}

		store = saverepository.NewPostgres(db, repositorySchemaName, gameRules, time.Now)
	}
	logger.Info("Initialized SaveRepository", "store", conf.Store())

	saveRepo := cache.NewSaveRepository(store, cache.NewTTLSaveCache(10*time.Minute))

	playerLocks, stopPlayerLocks := cache.NewPlayerLocks(10 * time.Minute)
	defer stopPlayerLocks()

	allowedOrigins, err := ports.NewDomainSuffixes(conf.AllowedOriginSuffixes()...)
	if err != nil {
		fail("Failed to initialize allowed origins", "error", err.Error())
	}

	hub := notifier.NewHub(ports.EncodePlayerEvent, func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		// Non-browser clients don't send an origin
		return origin == "" || allowedOrigins.AnyMatch(origin)
	})

	playerDeps := app.PlayerDeps{
		Repo:      saveRepo,
		Locks:     playerLocks,
		Publisher: hub,
		Rules:     gameRules,
		NowFunc:   time.Now,
	}

	getCatalog := app.BuildGetCatalog(gameRules)
	createPlayer := app.BuildCreatePlayer(playerDeps, uuid.NewString)
	getPlayer := app.BuildGetPlayer(playerDeps)
	resume := app.BuildResume(playerDeps)
	tap := app.BuildTap(playerDeps)
	purchase := app.BuildPurchase(playerDeps)
	checkAchievements := app.BuildCheckAchievements(playerDeps)
	importSave := app.BuildImportSave(playerDeps)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", ports.MakeHealthzHandler())

	mux.HandleFunc("OPTIONS /v1/catalog", ports.BuildCORSHandler(allowedOrigins, "GET"))
	mux.HandleFunc(
		"GET /v1/catalog",
		ports.MakeGetCatalogHandler(
			getCatalog,
			allowedOrigins,
			logger.With("port", "catalog"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players", ports.BuildCORSHandler(allowedOrigins, "POST"))
	mux.HandleFunc(
		"POST /v1/players",
		ports.MakeCreatePlayerHandler(
			createPlayer,
			allowedOrigins,
			logger.With("port", "createplayer"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}", ports.BuildCORSHandler(allowedOrigins, "GET"))
	mux.HandleFunc(
		"GET /v1/players/{playerID}",
		ports.MakeGetPlayerHandler(
			getPlayer,
			allowedOrigins,
			logger.With("port", "getplayer"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}/resume", ports.BuildCORSHandler(allowedOrigins, "POST"))
	mux.HandleFunc(
		"POST /v1/players/{playerID}/resume",
		ports.MakeResumeHandler(
			resume,
			allowedOrigins,
			logger.With("port", "resume"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}/tap", ports.BuildCORSHandler(allowedOrigins, "POST"))
	mux.HandleFunc(
		"POST /v1/players/{playerID}/tap",
		ports.MakeTapHandler(
			tap,
			allowedOrigins,
			logger.With("port", "tap"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}/purchase", ports.BuildCORSHandler(allowedOrigins, "POST"))
	mux.HandleFunc(
		"POST /v1/players/{playerID}/purchase",
		ports.MakePurchaseHandler(
			purchase,
			allowedOrigins,
			logger.With("port", "purchase"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}/achievements", ports.BuildCORSHandler(allowedOrigins, "POST"))
	mux.HandleFunc(
		"POST /v1/players/{playerID}/achievements",
		ports.MakeCheckAchievementsHandler(
			checkAchievements,
			allowedOrigins,
			logger.With("port", "achievements"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc("OPTIONS /v1/players/{playerID}/save", ports.BuildCORSHandler(allowedOrigins, "PUT"))
	mux.HandleFunc(
		"PUT /v1/players/{playerID}/save",
		ports.MakeImportSaveHandler(
			importSave,
			gameRules,
			allowedOrigins,
			logger.With("port", "importsave"),
			sentryMiddleware,
		),
	)

	mux.HandleFunc(
		"GET /v1/players/{playerID}/events",
		ports.MakeEventsHandler(
			getPlayer,
			hub,
			allowedOrigins,
			logger.With("port", "events"),
			sentryMiddleware,
		),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", conf.Port()),
		Handler:           otelhttp.NewHandler(mux, "timba"),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to shut down server", "error", err.Error())
		}
	}()

	logger.Info("Init complete", "port", conf.Port())
	err = server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		logger.Info("Server shutdown")
	} else {
		fail("Server error", "error", err.Error())
	}
}
