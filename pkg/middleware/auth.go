package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dustinwells/sprinter-leads/pkg/common"
)

// SessionCookieName is the cookie carrying the admin session token
const SessionCookieName = "admin_session"

// AdminAuth validates the admin session JWT from the session cookie or an
// Authorization bearer header. Unauthenticated requests get a bare 401 with
// no detail about what was wrong.
func AdminAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := ""
		if cookie, err := c.Cookie(SessionCookieName); err == nil {
			token = cookie
		}
		if token == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				token = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if token == "" || !validSessionToken(token, jwtSecret) {
			common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

func validSessionToken(token, secret string) bool {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid {
		return false
	}
	sub, err := parsed.Claims.GetSubject()
	return err == nil && sub == "admin"
}

// CronAuth authenticates scheduled-job triggers with a shared bearer secret.
func CronAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		expected := "Bearer " + secret
		if secret == "" || subtle.ConstantTimeCompare([]byte(auth), []byte(expected)) != 1 {
			common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}
