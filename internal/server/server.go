package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/repolens/backend/internal/docs"
	"github.com/repolens/backend/internal/queue"
	mid "github.com/repolens/backend/internal/server/middleware"
	"github.com/repolens/backend/internal/storage"
	"github.com/repolens/backend/internal/util"
	"github.com/repolens/backend/pkg/common"
	"github.com/repolens/backend/pkg/logger"
	"github.com/repolens/backend/pkg/store"
	"github.com/repolens/backend/pkg/store/memory"
	pgxstore "github.com/repolens/backend/pkg/store/pgx"
	"github.com/repolens/backend/pkg/workbench"

	"github.com/MicahParks/keyfunc/v3"
	"github.com/go-playground/validator"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rabbitmq/amqp091-go"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
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

func runMigrations(databaseURL string) error {
	m, err := migrate.New("file://migrations", databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func Init() {
	e := echo.New()
	e.Validator = &CustomValidator{validator: validator.New()}

	var key *keyfunc.Keyfunc
	if authURL := util.GetEnv("AUTH_URL"); authURL != "" {
		k, err := keyfunc.NewDefault([]string{authURL + "/jwks"})
		if err != nil {
			logger.Fatal("Failed to load jwks keys", "err", err)
		}
		key = &k
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Snapshot store: PostgreSQL when configured, in-memory otherwise.
	var conn *pgxpool.Pool
	var graphStore store.GraphStore
	if databaseURL := util.GetEnv("DATABASE_URL"); databaseURL != "" {
		if err := runMigrations(databaseURL); err != nil {
			logger.Fatal("Failed to migrate database", "err", err)
		}

		var err error
		conn, err = pgxpool.New(ctx, databaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to database", "err", err)
		}
		defer conn.Close()
		graphStore = pgxstore.NewSnapshotStore(conn)
	} else {
		logger.Info("DATABASE_URL not set, using in-memory snapshot store")
		graphStore = memory.NewMemoryStore()
	}

	var ch *amqp091.Channel
	if util.GetEnv("RABBITMQ_HOST") != "" {
		que := queue.Init()
		defer que.Close()

		var err error
		ch, err = que.Channel()
		if err != nil {
			logger.Fatal("Failed to open channel", "err", err)
		}
		if err := queue.SetupQueues(ch, queue.Queues); err != nil {
			logger.Fatal("Failed to setup queues", "err", err)
		}
	}

	s3Client := storage.NewS3Client(ctx)

	docsClient := docs.NewClient(util.GetEnv("DOCS_URL"), nil)

	sessions := workbench.NewManager(func(caseID string) *workbench.Session {
		opts := []workbench.SessionOption{
			workbench.WithNotifier(workbench.NotifierFunc(func(n workbench.Notification) {
				logger.Info("Workbench notification", "case_id", caseID, "type", n.Type, "message", n.Message)
			})),
			workbench.WithDocumentSource(docsClient),
		}
		if s3Client != nil {
			opts = append(opts, workbench.WithPublisher(func(ctx context.Context, caseID string, g *common.Graph, a *common.Analysis) error {
				bundle, err := json.Marshal(map[string]any{"graph": g, "analysis": a})
				if err != nil {
					return fmt.Errorf("failed to encode bundle: %w", err)
				}
				return storage.PutBundle(ctx, s3Client, caseID, bundle)
			}))
		}
		return workbench.NewSession(caseID, graphStore, opts...)
	})

	app := &mid.App{
		DBConn:         conn,
		Queue:          ch,
		Key:            key,
		S3:             s3Client,
		Store:          graphStore,
		Sessions:       sessions,
		MasterAPIKey:   util.GetEnv("MASTER_API_KEY"),
		MasterUserID:   util.GetEnv("MASTER_USER_ID"),
		MasterUserRole: util.GetEnv("MASTER_USER_ROLE"),
	}

	e.Use(mid.AppContextMiddleware(app))
	e.Use(middleware.CORS())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("16M"))

	RegisterRoutes(e)

	go func() {
		port := util.GetEnv("PORT")
		if port == "" {
			port = "8080"
		}
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
