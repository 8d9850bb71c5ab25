package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"dispatch/cmd"
	httpadapter "dispatch/internal/adapters/in/http"
	"dispatch/internal/adapters/out/postgres/assignmentrepo"
	"dispatch/internal/adapters/out/postgres/courierrepo"
	"dispatch/internal/adapters/out/postgres/orderrepo"
	"dispatch/internal/adapters/out/redisstore"
	"dispatch/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	configs, err := getConfigs()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	gormDB, err := openDatabase(configs)
	if err != nil {
		logger.Error("database connection failed", "error", err)
		os.Exit(1)
	}

	locationStore, err := redisstore.NewRedisLocationStore(configs.RedisURL)
	if err != nil {
		logger.Error("redis connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		_ = locationStore.Close()
	}()

	root := cmd.NewCompositionRoot(configs, gormDB, locationStore, logger)

	jobManager := jobs.NewJobManager(
		root.CreateExpireAssignmentsCommandHandler(),
		root.CreateDispatchPendingOrdersCommandHandler(),
		configs.DispatchRetryCron,
		logger,
	)
	if err := jobManager.StartAll(); err != nil {
		logger.Error("failed to start jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	startWebServer(root, configs.HTTPPort, logger)
}

func getConfigs() (cmd.Config, error) {
	// Missing .env is fine when the environment is already populated.
	_ = godotenv.Load(".env")

	ttl, err := time.ParseDuration(envOrDefault("ASSIGNMENT_TTL", "2m"))
	if err != nil {
		return cmd.Config{}, fmt.Errorf("ASSIGNMENT_TTL: %w", err)
	}

	radius, err := strconv.ParseFloat(envOrDefault("SERVICE_RADIUS_KM", "0"), 64)
	if err != nil {
		return cmd.Config{}, fmt.Errorf("SERVICE_RADIUS_KM: %w", err)
	}

	return cmd.Config{
		HTTPPort:          envOrDefault("HTTP_PORT", "8080"),
		DBHost:            os.Getenv("DB_HOST"),
		DBPort:            os.Getenv("DB_PORT"),
		DBUser:            os.Getenv("DB_USER"),
		DBPassword:        os.Getenv("DB_PASSWORD"),
		DBName:            os.Getenv("DB_NAME"),
		DBSslMode:         envOrDefault("DB_SSLMODE", "disable"),
		RedisURL:          envOrDefault("REDIS_URL", "redis://localhost:6379"),
		AssignmentTTL:     ttl,
		DispatchRetryCron: envOrDefault("DISPATCH_RETRY_CRON", "*/5 * * * * *"),
		ServiceRadiusKm:   radius,
	}, nil
}

func envOrDefault(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost, configs.DBPort, configs.DBUser,
		configs.DBPassword, configs.DBName, configs.DBSslMode)

	gormDB, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = gormDB.AutoMigrate(
		&orderrepo.OrderDTO{},
		&courierrepo.CourierDTO{},
		&assignmentrepo.AssignmentDTO{},
		&assignmentrepo.CandidateDTO{},
	)
	if err != nil {
		return nil, err
	}

	return gormDB, nil
}

func startWebServer(root *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})

	server := httpadapter.NewServer(
		root.CreateCreateCourierCommandHandler(),
		root.CreateCreateOrderCommandHandler(),
		root.CreateDispatchOrderCommandHandler(),
		root.CreateAcceptAssignmentCommandHandler(),
		root.CreateDeclineAssignmentCommandHandler(),
		root.CreateSendDeliveryCodeCommandHandler(),
		root.CreateVerifyDeliveryCodeCommandHandler(),
		root.CreateReportLocationCommandHandler(),
		root.CreateGetAllCouriersQueryHandler(),
		root.CreateGetUncompletedOrdersQueryHandler(),
		root.CreateGetCourierAssignmentsQueryHandler(),
		root.CreateGetCurrentOrderQueryHandler(),
		logger,
	)
	server.RegisterRoutes(e)

	e.GET("/ws", root.Hub().Handle)

	e.Logger.Fatal(e.Start(fmt.Sprintf("0.0.0.0:%s", port)))
}
