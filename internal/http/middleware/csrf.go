package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/csrf"
)

// CSRF wraps the csrf middleware so the token cookie is marked Secure only on
// HTTPS requests (TLS or X-Forwarded-Proto from a proxy). cfg.CookieSecure is
// ignored. Each scheme keeps its own token store; a client stays on one.
func CSRF(cfg csrf.Config) fiber.Handler {
	plain, secure := cfg, cfg
	plain.CookieSecure = false
	secure.CookieSecure = true
	plainHandler, secureHandler := csrf.New(plain), csrf.New(secure)

	return func(c *fiber.Ctx) error {
		if c.Protocol() == "https" {
			return secureHandler(c)
		}
		return plainHandler(c)
	}
}
