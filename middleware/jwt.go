package middleware

import (
	"fmt"
	"learnfront/config"
	"learnfront/session"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// SessionCookie carries the same JWT as the Authorization header for browsers
const SessionCookie = "lf_session"

// GenerateJWT signs the BFF token that names a session
func GenerateJWT(s *session.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid":    s.ID,
		"userId": s.Profile.UserID,
		"name":   s.Profile.Name,
		"role":   s.Profile.Role,
		"email":  s.Profile.Email,
		"iat":    time.Now().Unix(),
		"exp":    s.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	jwtSecret := []byte(config.AppConfig.JWTKey)

	return token.SignedString(jwtSecret)
}

// SessionMiddleware resolves the caller's session from a Bearer token or the
// session cookie and stores it in c.Locals("session").
func SessionMiddleware(sessions *session.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := ""
		if authHeader := c.Get("Authorization"); authHeader != "" {
			// The token should be prefixed with "Bearer "
			if !strings.HasPrefix(authHeader, "Bearer ") {
				return authFailure(c, "Invalid Authorization header format")
			}
			tokenString = authHeader[len("Bearer "):]
		} else {
			tokenString = c.Cookies(SessionCookie)
		}
		if tokenString == "" {
			return authFailure(c, "Missing or invalid Authorization header")
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(config.AppConfig.JWTKey), nil
		})
		if err != nil || !token.Valid {
			return authFailure(c, "Invalid or expired token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		sid, _ := claims["sid"].(string)
		if !ok || sid == "" {
			return authFailure(c, "Invalid token payload")
		}

		s, err := sessions.Get(sid)
		if err != nil {
			return authFailure(c, "Your session has expired. Please log in again.")
		}

		c.Locals("session", s)
		c.Locals("userId", s.Profile.UserID)
		c.Locals("role", s.Profile.Role)
		return c.Next()
	}
}

// CurrentSession returns the session SessionMiddleware stored
func CurrentSession(c *fiber.Ctx) *session.Session {
	s, _ := c.Locals("session").(*session.Session)
	return s
}

func authFailure(c *fiber.Ctx, message string) error {
	return JsonResponse(c, fiber.StatusUnauthorized, false, message, fiber.Map{"redirect": "/login"})
}

// IssueSession signs s and sets it as the session cookie. The JWT is returned
// for clients that prefer the Authorization header.
func IssueSession(c *fiber.Ctx, s *session.Session) (string, error) {
	token, err := GenerateJWT(s)
	if err != nil {
		return "", err
	}
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

func ClearSession(c *fiber.Ctx) {
	c.ClearCookie(SessionCookie)
}
