package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Context keys set by Auth.
const (
	CtxOperatorID = "operator_id"
	CtxUsername   = "username"
	CtxRole       = "role"
	CtxPerms      = "perms"
)

// Auth validates the bearer JWT and injects the operator claims into context.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (any, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !tkn.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			role, _ := claims["role"].(string)
			if role == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "token missing role")
			}
			sub, _ := claims.GetSubject()

			c.Set(CtxOperatorID, sub)
			c.Set(CtxUsername, claims["username"])
			c.Set(CtxRole, role)
			c.Set(CtxPerms, permsClaim(claims))

			return next(c)
		}
	}
}

// permsClaim reads the "perms" array; a malformed claim grants nothing.
func permsClaim(claims jwt.MapClaims) []string {
	raw, _ := claims["perms"].([]any)
	perms := make([]string, 0, len(raw))
	for _, v := range raw {
		if p, ok := v.(string); ok && p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}
