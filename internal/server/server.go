package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tagexplorer/backend/internal/aiclient"
	"github.com/tagexplorer/backend/internal/db"
	"github.com/tagexplorer/backend/internal/queue"
	mid "github.com/tagexplorer/backend/internal/server/middleware"
	"github.com/tagexplorer/backend/internal/storage"
	"github.com/tagexplorer/backend/internal/usage"
	"github.com/tagexplorer/backend/internal/util"
	"github.com/tagexplorer/backend/pkg/analyze"
	loaders3 "github.com/tagexplorer/backend/pkg/loader/s3"
	"github.com/tagexplorer/backend/pkg/logger"
	pgxstore "github.com/tagexplorer/backend/pkg/store/pgx"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

// New creates the echo instance serving app.
func New(app *mid.App) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(util.GetEnvString("BODY_LIMIT", "100M")))

	RegisterRoutes(e)
	return e
}

func Init() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &mid.App{
		MasterAPIKey: util.GetEnv("MASTER_API_KEY"),
	}

	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefaultCtx(ctx, []string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		app.KeyFunc = k.Keyfunc
	}
	if !app.AuthEnabled() {
		logger.Warn("No AUTH_URL or MASTER_API_KEY set, running in single-user mode")
	}

	databaseURL := util.GetEnv("DATABASE_URL")
	if err := db.Migrate(databaseURL, util.GetEnv("MIGRATIONS_PATH")); err != nil {
		logger.Fatal("Failed to run migrations", "err", err)
	}
	pool, err := db.NewPool(ctx, databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", "err", err)
	}
	defer pool.Close()

	st, err := pgxstore.NewDBStorageWithConnection(ctx, pool)
	if err != nil {
		logger.Fatal("Failed to create store", "err", err)
	}
	app.Store = st

	blobs, err := storage.NewBlobsFromEnv(ctx)
	if err != nil {
		logger.Fatal("Failed to create S3 client", "err", err)
	}
	app.Blobs = blobs
	app.Files = loaders3.NewS3GraphFileLoaderWithClient(blobs.Bucket(), blobs.Client())

	tracker := usage.NewTracker(pool, util.GetEnvFloat("AI_COST_PER_ANALYSIS", usage.DefaultCostPerAnalysis))
	app.Usage = tracker

	aiCfg := aiclient.ConfigFromEnv()
	aiClient, err := aiclient.New(aiCfg)
	if err != nil {
		logger.Fatal("Failed to create AI client", "err", err)
	}
	if aiClient == nil {
		logger.Warn("AI is not configured, uploads get the default tag")
	}
	model := aiCfg.ChatModel
	if model == "" {
		model = analyze.DefaultModel
	}
	app.Analyzer = analyze.New(aiClient, analyze.Options{
		Model:      model,
		Timeout:    util.GetEnvDuration("AI_ANALYZE_TIMEOUT", analyze.DefaultTimeout),
		Structured: util.GetEnvBool("AI_STRUCTURED_OUTPUT", false),
		Thinking:   util.GetEnv("AI_THINKING"),
		Recorder:   tracker,
	})

	if queue.Configured() {
		conn, err := queue.Init()
		if err != nil {
			logger.Fatal("Failed to connect to RabbitMQ", "err", err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		defer ch.Close()
		if err := queue.SetupQueues(ch, queue.Queues); err != nil {
			logger.Fatal("Failed to set up queues", "err", err)
		}
		app.Queue = queue.NewChannelPublisher(ch)
	} else {
		logger.Info("RabbitMQ not configured, background jobs run inline")
	}

	e := New(app)

	go func() {
		port := util.GetEnvString("PORT", "8080")
		logger.Info("Starting server", "port", port)
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown server", "err", err)
	}
}
