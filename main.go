package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"todoapp/internal/handlers"
	"todoapp/internal/middleware"
	"todoapp/internal/models"
	"todoapp/internal/repositories"
	"todoapp/internal/services"
	"todoapp/pkg/rabbitmq"
)

// loadConfig sets the viper defaults and loads environment overrides.
func loadConfig() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("JWT_SECRET", "dev_secret_change_me")
	viper.SetDefault("DATABASE_DSN", "") // empty: fall back to sqlite
	viper.SetDefault("SQLITE_PATH", "todoapp.db")
	viper.SetDefault("RABBITMQ_URL", "") // empty: event publishing disabled
	viper.AutomaticEnv()
}

// openDatabase connects to PostgreSQL when DATABASE_DSN is set, otherwise to
// a local sqlite file, and migrates the schema.
func openDatabase() (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)
	if dsn := viper.GetString("DATABASE_DSN"); dsn != "" {
		db, err = gorm.Open(postgres.Open(dsn), &gorm.Config{})
	} else {
		db, err = gorm.Open(sqlite.Open(viper.GetString("SQLITE_PATH")), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Todo{}); err != nil {
		return nil, err
	}
	return db, nil
}

// NewApp wires the repositories, services, and handlers onto a Fiber app.
// It is the single assembly point so the startup test can build the same app
// main runs.
func NewApp() (*fiber.App, *services.AuthService, error) {
	loadConfig()

	db, err := openDatabase()
	if err != nil {
		return nil, nil, err
	}

	// RabbitMQ is optional: without a URL the todo service simply skips
	// event publishing.
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			log.Printf("Warning: RabbitMQ unavailable, todo events disabled: %v", err)
			mqClient = nil
		}
	}

	// Repositories
	userRepo := repositories.NewGORMUserRepository(db)
	todoRepo := repositories.NewGORMTodoRepository(db)

	// Services
	authService := services.NewAuthService(userRepo, viper.GetString("JWT_SECRET"))
	var publisher services.EventPublisher
	if mqClient != nil {
		publisher = mqClient
	}
	todoService := services.NewTodoService(todoRepo, userRepo, publisher)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	todoHandler := handlers.NewTodoHandler(todoService)

	app := fiber.New()
	app.Use(logger.New()) // Request logger

	// Public auth routes, protected todo routes
	api := app.Group("/api")
	authHandler.RegisterRoutes(api)
	todoRoutes := api.Group("/todos", middleware.AuthRequired(authService))
	todoHandler.RegisterRoutes(todoRoutes)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	if mqClient != nil {
		// Consume todo events; the handler just logs them for now.
		messageHandler := func(msg amqp.Delivery) error {
			log.Printf("Received Todo Event (Tag: %d): %s", msg.DeliveryTag, string(msg.Body))
			return nil // Return nil to acknowledge
		}
		if consumerErr := mqClient.ConsumeTodoEvents(messageHandler); consumerErr != nil {
			log.Printf("Failed to start RabbitMQ consumer: %v", consumerErr)
		}

		app.Hooks().OnShutdown(func() error {
			return mqClient.Close()
		})
	}

	return app, authService, nil
}

func main() {
	app, _, err := NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	appPort := viper.GetString("APP_PORT")
	log.Printf("Starting server on port %s", appPort)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}

	log.Println("Server gracefully stopped")
}
