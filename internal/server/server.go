package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"taskapi/internal/config"
	"taskapi/internal/database"
	"taskapi/internal/handler"
	"taskapi/internal/middleware"
	"taskapi/internal/repository"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
}

func Init(cfg *config.Config) (*Server, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("❌ failed to connect to DB: %w", err)
	}
	log.Printf("✅ Connected to database (%s)", cfg.DBDriver)

	if err := database.Migrate(db, cfg); err != nil {
		return nil, fmt.Errorf("❌ failed to migrate DB: %w", err)
	}

	return &Server{
		Engine: NewRouter(db, cfg),
		DB:     db,
		Config: cfg,
	}, nil
}

// NewRouter wires the task routes and API docs onto a fresh engine.
func NewRouter(db *gorm.DB, cfg *config.Config) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg.CORSOrigin))

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(db)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskRepo)

	tasks := r.Group("/tasks")
	{
		tasks.POST("", taskHandler.Create)
		tasks.GET("", taskHandler.GetAll)
		tasks.GET("/:id", taskHandler.GetByID)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	// API docs
	r.GET("/docs", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/docs/index.html")
	})
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:    ":" + s.Config.ServerPort,
		Handler: s.Engine,
	}

	go func() {
		log.Printf("🚀 Server running on port %s\n", s.Config.ServerPort)
		log.Printf("📚 API docs at http://localhost:%s/docs\n", s.Config.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("❌ Failed to listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				return s.Shutdown(ctx, srv)
			},
		},
	)

	exitCode := <-wait
	if exitCode == 0 {
		log.Println("✅ Server exited properly")
	}
	os.Exit(exitCode)
}

// Shutdown stops srv, waits for in-flight requests, then closes the pool.
func (s *Server) Shutdown(ctx context.Context, srv *http.Server) error {
	log.Println("🛑 Shutting down server...")
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}
	return database.Close(s.DB)
}
