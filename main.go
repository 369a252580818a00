package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/geo-reconciler/app/config"
	"github.com/geo-reconciler/app/controllers"
	"github.com/geo-reconciler/app/services"
	"github.com/geo-reconciler/internal/directory"
	"github.com/geo-reconciler/routes"
)

func main() {
	// 1. Load configuration
	loadConfig()

	// 2. Initialize logger
	logger := initLogger()
	defer logger.Sync()

	logger.Info("Starting Geo Reconciler Service")

	// 3. Load matcher weights and thresholds
	if err := config.Load(viper.GetString("matcher.config_path")); err != nil {
		logger.Warn("Using default matcher config", zap.Error(err))
	}

	// 4. Initialize directory loader
	loader := directory.NewLoader(directory.LoaderConfig{
		BaseURL:        viper.GetString("directory.url"),
		NationalRootID: viper.GetString("directory.root_id"),
	}, logger)

	// 5. Initialize resolve service and load the initial snapshot
	lruSize := getEnvInt("CACHE_LRU_SIZE", viper.GetInt("cache.lru_size"))
	resolveService, err := services.NewResolveService(loader, lruSize, logger)
	if err != nil {
		logger.Fatal("Failed to initialize resolve service", zap.Error(err))
	}
	if err := resolveService.ReloadDirectory(context.Background()); err != nil {
		logger.Fatal("Failed to load directory", zap.Error(err))
	}

	// 6. Initialize result cache (Redis when configured, memory otherwise)
	var cacheService services.ICacheService
	if redisURL := viper.GetString("redis.url"); redisURL != "" {
		redisCache, err := services.NewRedisCacheService(redisURL, logger)
		if err != nil {
			logger.Fatal("Failed to initialize Redis cache", zap.Error(err))
		}
		cacheService = redisCache
	} else {
		cacheService = services.NewMemoryCacheService(24 * time.Hour)
		logger.Info("Redis not configured, using in-memory result cache")
	}
	defer cacheService.Close()

	// 7. Initialize session store (MongoDB when configured)
	var mongoDB *mongo.Database
	if mongoURL := viper.GetString("mongo.url"); mongoURL != "" {
		mongoDB = initMongoDB(mongoURL, logger)
		defer func() {
			if err := mongoDB.Client().Disconnect(context.Background()); err != nil {
				logger.Error("Error disconnecting MongoDB", zap.Error(err))
			}
		}()
	} else {
		logger.Info("MongoDB not configured, sessions held in memory")
	}
	sessionService := services.NewSessionService(mongoDB, logger)

	// 8. Initialize controllers
	cityController := controllers.NewCityController(resolveService, sessionService, cacheService, logger)
	adminController := controllers.NewAdminController(resolveService, cacheService, logger)

	// 9. Initialize Gin router
	if getEnv("APP_ENV", "development") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()

	// 10. Set up routes
	routes.SetupAllRoutes(router, cityController, adminController)

	// 11. Start server
	port := getEnv("APP_PORT", viper.GetString("app.port"))
	logger.Info("Geo Reconciler Service starting", zap.String("port", port))

	if err := router.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// loadConfig reads configuration from file and env vars.
func loadConfig() {
	viper.SetConfigName("app")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./config")
	viper.AddConfigPath(".")

	viper.SetDefault("app.port", "8080")
	viper.SetDefault("app.env", "development")
	viper.SetDefault("directory.url", "https://api.hh.ru/areas")
	viper.SetDefault("directory.root_id", directory.DefaultRootGroupID)
	viper.SetDefault("redis.url", "")
	viper.SetDefault("mongo.url", "")
	viper.SetDefault("cache.lru_size", 10000)
	viper.SetDefault("matcher.config_path", "./config/matcher.yaml")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Cannot read config file: %v", err)
	}
}

// initLogger builds the structured logger for the current environment.
func initLogger() *zap.Logger {
	env := getEnv("APP_ENV", "development")

	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatal("Cannot initialize logger:", err)
	}

	return logger
}

// initMongoDB connects to MongoDB and returns the session database.
func initMongoDB(mongoURL string, logger *zap.Logger) *mongo.Database {
	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(mongoURL))
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal("Failed to ping MongoDB", zap.Error(err))
	}

	dbName := getEnv("MONGO_DB", "geo_reconciler")
	db := client.Database(dbName)
	logger.Info("Connected to MongoDB", zap.String("database", dbName))

	return db
}

// getEnv reads an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an environment variable as int with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
