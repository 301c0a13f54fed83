package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/pulsefeed/pulsefeed/app/controllers"
	"github.com/pulsefeed/pulsefeed/internal/pkg/cache"
	"github.com/pulsefeed/pulsefeed/internal/pkg/env"
	"github.com/pulsefeed/pulsefeed/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        60,
		Expiration: 1 * time.Minute,
		Storage:    newLimiterStorage(),
	}))
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	v1.Get("/topics", controllers.HandleListTopics)
	v1.Get("/topics/:id/posts", controllers.HandleListTopicPosts)
	// registered before /posts/:uuid so "ingest" is not captured as a uuid
	v1.Get("/posts/ingest/:uuid/status", controllers.HandleIngestStatus)
	v1.Get("/posts/:uuid", controllers.HandleGetPost)

	// Creating posts needs a verified identity
	v1.Post("/posts", middleware.TokenAuthMiddleware(), controllers.HandleCreatePost)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

// newLimiterStorage backs the rate limiter with Redis so limits hold across
// instances. Reuses the cache connection settings, on database 1 (cache uses
// database 0).
func newLimiterStorage() *redis.Storage {
	host := env.GetEnv("CACHE_HOST", "localhost")
	port := 6379
	password := env.GetEnv("CACHE_PASSWORD", "")

	if client := cache.GetClient(); client != nil {
		addr := client.Options().Addr
		if h, p, err := net.SplitHostPort(addr); err == nil {
			host = h
			if v, err := strconv.Atoi(p); err == nil {
				port = v
			}
		}
		if p := client.Options().Password; p != "" {
			password = p
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: password,
		Database: 1,
	})
}
