package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/spf13/viper"
	"github.com/streadway/amqp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"clothingstore/internal/handlers"
	"clothingstore/internal/middleware"
	"clothingstore/internal/models"
	"clothingstore/internal/repositories"
	"clothingstore/internal/services"
	"clothingstore/pkg/rabbitmq"
)

// config holds the environment configuration recognized by the server.
type config struct {
	Port        string
	FrontendURL string
	DatabaseDSN string
	UploadDir   string
	RabbitMQURL string
	AppEnv      string
}

// loadConfig reads the configuration from environment variables, falling
// back to defaults suitable for local development.
func loadConfig() config {
	viper.SetDefault("PORT", "3000")
	viper.SetDefault("FRONTEND_URL", "http://localhost:4200")
	viper.SetDefault("DATABASE_DSN", "clothing.db")
	viper.SetDefault("UPLOAD_DIR", "./uploads")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("APP_ENV", "development")
	viper.AutomaticEnv()

	return config{
		Port:        viper.GetString("PORT"),
		FrontendURL: viper.GetString("FRONTEND_URL"),
		DatabaseDSN: viper.GetString("DATABASE_DSN"),
		UploadDir:   viper.GetString("UPLOAD_DIR"),
		RabbitMQURL: viper.GetString("RABBITMQ_URL"),
		AppEnv:      viper.GetString("APP_ENV"),
	}
}

// openDatabase connects to the product store and runs migrations. Postgres
// DSNs select the postgres driver; anything else is treated as a SQLite path.
func openDatabase(dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "host=") {
		dialector = postgres.Open(dsn)
	} else {
		dialector = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.AutoMigrate(&models.Product{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// newFiberApp assembles the HTTP surface around the product service.
func newFiberApp(cfg config, productService *services.ProductService) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.NewErrorHandler(cfg.AppEnv == "development"),
	})

	// --- Middleware ---
	app.Use(logger.New()) // Request logger
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.FrontendURL,
	}))

	// Uploaded images are served read-only.
	app.Static("/uploads", cfg.UploadDir)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Welcome to the Clothing Store API")
	})

	// --- Health Check Endpoint ---
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	// --- API Routes ---
	api := app.Group("/api")
	productHandler := handlers.NewProductHandler(productService)
	productHandler.RegisterRoutes(api, middleware.UploadProductImage(cfg.UploadDir))

	return app
}

func main() {
	cfg := loadConfig()

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload directory: %v", err)
	}

	// --- Product store ---
	// The store client is constructed here and injected; its lifecycle ends
	// with the shutdown sequence below.
	var productRepo repositories.ProductRepository
	var db *gorm.DB
	if cfg.DatabaseDSN == "memory" {
		productRepo = repositories.NewInMemoryProductRepository()
	} else {
		var err error
		db, err = openDatabase(cfg.DatabaseDSN)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		productRepo = repositories.NewGORMProductRepository(db)
	}

	// --- Event publisher (optional) ---
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if cfg.RabbitMQURL != "" {
		var err error
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL})
		if err != nil {
			log.Fatalf("Failed to initialize RabbitMQ client: %v", err)
		}
		publisher = mqClient

		// Audit consumer: log every product lifecycle event on the queue.
		go func() {
			if err := mqClient.ConsumeProductEvents(func(msg amqp.Delivery) error {
				log.Printf("Product event (tag %d): %s", msg.DeliveryTag, msg.Body)
				return nil
			}); err != nil {
				log.Printf("Failed to start RabbitMQ consumer: %v", err)
			}
		}()
	} else {
		log.Println("RABBITMQ_URL not set. Product events will not be published.")
	}

	// --- Services and HTTP Surface ---
	productService := services.NewProductService(productRepo, publisher)
	app := newFiberApp(cfg, productService)

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on port %s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Printf("Error during Fiber shutdown: %v", err)
	}
	if mqClient != nil {
		if err := mqClient.Close(); err != nil {
			log.Printf("Error closing RabbitMQ client: %v", err)
		}
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}

	log.Println("Server gracefully stopped")
}
