package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/ticketbot/pkg/util/errorutil"
)

const operatorKey = "ops_operator"

// OpsMiddleware validates bearer tokens on the ops API.
type OpsMiddleware struct {
	tokens *TokenManager
}

// NewOpsMiddleware constructs middleware.
func NewOpsMiddleware(tokens *TokenManager) *OpsMiddleware {
	return &OpsMiddleware{tokens: tokens}
}

// Handle enforces authentication for protected routes. Without a configured
// secret every protected route is refused.
func (m *OpsMiddleware) Handle(c *fiber.Ctx) error {
	if !m.tokens.Enabled() {
		return apperrors.NewUnauthorized("ops api disabled")
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	c.Locals(operatorKey, claims.Subject)
	return c.Next()
}

// OperatorFromContext retrieves the authenticated operator name.
func OperatorFromContext(c *fiber.Ctx) (string, bool) {
	operator, ok := c.Locals(operatorKey).(string)
	return operator, ok
}
