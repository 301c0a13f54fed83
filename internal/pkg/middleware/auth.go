package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/pulsefeed/pulsefeed/app/models"
	"github.com/pulsefeed/pulsefeed/app/repository"
	"github.com/pulsefeed/pulsefeed/internal/pkg/cache"
	"github.com/pulsefeed/pulsefeed/internal/pkg/identity"
	"github.com/pulsefeed/pulsefeed/internal/pkg/usercontext"
)

const tokenCacheTTL = 5 * time.Minute

// Identity verification is a variable so tests can swap in a stub
var VerifyTokenImplementation = defaultVerifyToken

func defaultVerifyToken(c *fiber.Ctx, token string) (*identity.Identity, error) {
	return identity.NewClient().VerifyToken(c.Context(), token)
}

// TokenAuthMiddleware authenticates requests carrying a bearer token issued by
// the identity service. Verified identities are cached briefly so bursts of
// uploads do not hammer the identity service, and mirrored into the local
// users table so posts have a foreign key to anchor to.
func TokenAuthMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractBearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Missing bearer token"})
		}

		id, err := lookupIdentity(c, token)
		if err != nil {
			if errors.Is(err, identity.ErrInvalidToken) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized", "message": "Invalid token"})
			}
			log.Errorf("[Auth] Token verification failed: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Token verification failed"})
		}

		repo := repository.GetGlobalFactory().GetUserRepository()
		user := &models.User{ID: id.UserID, Username: id.Username}
		if err := repo.Ensure(user); err != nil {
			log.Errorf("[Auth] Could not mirror user %d: %v", id.UserID, err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "User lookup failed"})
		}

		usercontext.SetUserContext(c, usercontext.UserContext{
			UserID:     id.UserID,
			Username:   id.Username,
			IsLoggedIn: true,
		})

		return c.Next()
	}
}

// RequireAuth ensures an authenticated user and returns JSON 401 otherwise
func RequireAuth(c *fiber.Ctx) error {
	if !usercontext.IsLoggedIn(c) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error":   "unauthorized",
			"message": "login required",
		})
	}
	return c.Next()
}

// lookupIdentity resolves a token via the cache first, then the identity
// service. Only the token hash ever reaches the cache.
func lookupIdentity(c *fiber.Ctx, token string) (*identity.Identity, error) {
	sum := sha256.Sum256([]byte(token))
	key := "auth:token:" + hex.EncodeToString(sum[:])

	if cached, err := cache.Get(key); err == nil && cached != "" {
		var id identity.Identity
		if err := json.Unmarshal([]byte(cached), &id); err == nil {
			return &id, nil
		}
	}

	id, err := VerifyTokenImplementation(c, token)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(id); err == nil {
		if err := cache.Set(key, string(payload), tokenCacheTTL); err != nil {
			log.Warnf("[Auth] Could not cache verified token: %v", err)
		}
	}

	return id, nil
}

func extractBearerToken(c *fiber.Ctx) string {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
