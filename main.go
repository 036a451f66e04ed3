package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/swagatsuman/delivery-app-sub002/config"
	"github.com/swagatsuman/delivery-app-sub002/events"
	"github.com/swagatsuman/delivery-app-sub002/handlers"
	"github.com/swagatsuman/delivery-app-sub002/models"
	"github.com/swagatsuman/delivery-app-sub002/orders"
	"github.com/swagatsuman/delivery-app-sub002/pkg/logger"
	"github.com/swagatsuman/delivery-app-sub002/utils"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found. Using environment variables.")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	utils.SetJWTSecret(cfg.Auth.JWTSecret)

	/* DATABASE SETUP STARTS */

	db, openDbErr := gorm.Open(sqlite.Open(cfg.Database.URI), &gorm.Config{})
	if openDbErr != nil {
		log.Fatalf("Failed to connect to database: %v", openDbErr)
	}
	handlers.DB = db

	migrateErr := db.AutoMigrate(&models.User{}, &models.Establishment{}, &models.Category{}, &models.MenuItem{})
	if migrateErr != nil {
		log.Fatalf("Failed to migrate database: %v", migrateErr)
	}

	// Orders live in the customer-facing app's Mongo collection; this system
	// only reads them and advances their status.
	mongoCtx, cancelMongo := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelMongo()

	mongoClient, err := mongo.Connect(mongoCtx, mongoopts.Client().ApplyURI(cfg.Mongo.URI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	if err := mongoClient.Ping(mongoCtx, nil); err != nil {
		log.Fatalf("Failed to ping MongoDB: %v", err)
	}

	handlers.Orders = orders.NewService(
		orders.NewMongoSource(mongoClient.Database(cfg.Mongo.Database)),
		appLog,
	)

	if len(cfg.Kafka.Brokers) > 0 {
		publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			log.Fatalf("Failed to connect to Kafka: %v", err)
		}
		defer publisher.Close()
		handlers.Events = publisher
	}
	/* DATABASE SETUP ENDS */

	/* ROUTING STARTS */
	router := gin.Default()

	var corsConfig cors.Config
	if cfg.Server.Env == "debug" || cfg.Server.Env == "development" {
		// Development: Allow all origins
		corsConfig = cors.Config{
			AllowOrigins:     []string{"*"},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	} else {
		corsConfig = cors.Config{
			AllowOrigins:     []string{os.Getenv("DASHBOARD_ORIGIN")},
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}
	}

	router.Use(cors.New(corsConfig))

	// --- Authentication Routes ---
	authGroup := router.Group("/auth")
	{
		authGroup.POST("/register", handlers.AuthHandler)
		authGroup.POST("/login", handlers.AuthHandler)
	}

	// --- Owner Protected Routes ---
	ownerRoutes := router.Group("/owner", handlers.AuthMiddleware())
	{
		ownerRoutes.GET("", handlers.AccountHandler)

		establishmentRoutes := ownerRoutes.Group("/establishments")
		{
			establishmentRoutes.POST("", handlers.CreateEstablishmentHandler)
			establishmentRoutes.GET("", handlers.GetOwnerEstablishmentsHandler)

			establishmentRoutes.GET("/:establishment_id", handlers.GetEstablishmentHandler)
			establishmentRoutes.PUT("/:establishment_id", handlers.UpdateEstablishmentHandler)
			establishmentRoutes.DELETE("/:establishment_id", handlers.DeleteEstablishmentHandler)

			categoryRoutes := establishmentRoutes.Group("/:establishment_id/categories")
			{
				categoryRoutes.POST("", handlers.CreateCategoryHandler)
				categoryRoutes.GET("", handlers.GetCategoriesHandler)
				categoryRoutes.DELETE("/:category_id", handlers.DeleteCategoryHandler)
			}

			menuItemRoutes := establishmentRoutes.Group("/:establishment_id/menuitems")
			{
				menuItemRoutes.POST("", handlers.CreateMenuItemHandler)
				menuItemRoutes.GET("", handlers.GetMenuItemsHandler)
				menuItemRoutes.PUT("/:item_id", handlers.UpdateMenuItemHandler)
				menuItemRoutes.DELETE("/:item_id", handlers.DeleteMenuItemHandler)
			}

			orderRoutes := establishmentRoutes.Group("/:establishment_id/orders")
			{
				orderRoutes.GET("", handlers.GetEstablishmentOrdersHandler)
				orderRoutes.GET("/stream", handlers.StreamEstablishmentOrdersHandler)
			}

			establishmentRoutes.GET("/:establishment_id/dashboard", handlers.DashboardHandler)
		}

		// Order management (establishment-agnostic; ownership checked per order)
		orderManagementRoutes := ownerRoutes.Group("/orders")
		{
			orderManagementRoutes.GET("/:order_id", handlers.GetOrderHandler)
			orderManagementRoutes.PATCH("/:order_id/status", handlers.UpdateOrderStatusHandler)
		}
	}

	/* ROUTING ENDS */

	port := ":" + cfg.Server.Port
	log.Printf("Server listening on port %s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
