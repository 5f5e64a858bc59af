package middleware

import (
	"net"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// AllowedHosts rejects requests whose Host header is not in hosts with 400.
// Entries match case-insensitively and ignore the port. "*" allows any host
// and a leading dot (".example.com") matches the domain and its subdomains.
func AllowedHosts(hosts []string) fiber.Handler {
	allowed := make([]string, 0, len(hosts))
	for _, h := range hosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			allowed = append(allowed, h)
		}
	}

	return func(c *fiber.Ctx) error {
		if hostAllowed(c.Hostname(), allowed) {
			return c.Next()
		}
		return fiber.NewError(fiber.StatusBadRequest, "invalid host header")
	}
}

func hostAllowed(host string, allowed []string) bool {
	host = strings.ToLower(host)
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.TrimSuffix(strings.Trim(host, "[]"), ".")
	if host == "" {
		return false
	}
	for _, a := range allowed {
		switch {
		case a == "*":
			return true
		case strings.HasPrefix(a, "."):
			if host == a[1:] || strings.HasSuffix(host, a) {
				return true
			}
		case host == a:
			return true
		}
	}
	return false
}
