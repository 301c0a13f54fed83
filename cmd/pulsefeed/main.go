package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/pulsefeed/pulsefeed/app/repository"
	"github.com/pulsefeed/pulsefeed/internal/pkg/cache"
	"github.com/pulsefeed/pulsefeed/internal/pkg/database"
	"github.com/pulsefeed/pulsefeed/internal/pkg/env"
	"github.com/pulsefeed/pulsefeed/internal/pkg/metrics/counter"
	"github.com/pulsefeed/pulsefeed/internal/pkg/router"
	"github.com/pulsefeed/pulsefeed/internal/pkg/storage"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())

	store := storage.NewMediaStore("")
	if err := store.EnsureLayout(); err != nil {
		panic(fmt.Sprintf("Could not create uploads directory tree: %v", err))
	}

	// Find the project root so docs resolve from cmd/pulsefeed too
	basePaths := []string{
		"./",
		"../../",
		"../../../",
	}
	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	// Uploads can be large before normalization shrinks them
	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024 * 1024, // 1 GiB
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	// fiber metrics
	app.Get("/metrics", basicauth.New(basicauth.Config{
		Users: map[string]string{
			env.GetEnv("METRICS_USER", "admin"): env.GetEnv("METRICS_PASSWORD", "admin"),
		},
	}), monitor.New())

	// drain view counters to the database in the background
	counter.StartFlusher(context.Background(), time.Minute)

	// finalized media and thumbnails
	app.Static("/uploads", store.BaseDir, fiber.Static{
		CacheDuration: 10 * time.Second,
		Compress:      false,
		MaxAge:        604800, // 7 days
	})

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app)

	return app
}
