package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/refabry-storefront/pkg/logger"
)

const sessionHeader = "X-Cart-Session"

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{8,64}$`)

// SessionPolicy controls the cart session cookie.
type SessionPolicy struct {
	CookieName string
	MaxAge     time.Duration
	Secure     bool
}

// CartSession resolves the anonymous cart session id from the X-Cart-Session
// header or the session cookie, issuing a new one when neither is usable. The id
// is echoed in the response header and cookie.
func CartSession(policy SessionPolicy, logg *logger.Logger) func(http.Handler) http.Handler {
	if policy.CookieName == "" {
		policy.CookieName = "sf_cart"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := sessionFromRequest(r, policy.CookieName)
			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			w.Header().Set(sessionHeader, sessionID)
			http.SetCookie(w, &http.Cookie{
				Name:     policy.CookieName,
				Value:    sessionID,
				Path:     "/",
				MaxAge:   int(policy.MaxAge.Seconds()),
				HttpOnly: true,
				Secure:   policy.Secure,
				SameSite: http.SameSiteLaxMode,
			})

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func sessionFromRequest(r *http.Request, cookieName string) string {
	if id := strings.TrimSpace(r.Header.Get(sessionHeader)); sessionIDPattern.MatchString(id) {
		return id
	}
	if cookie, err := r.Cookie(cookieName); err == nil {
		if id := strings.TrimSpace(cookie.Value); sessionIDPattern.MatchString(id) {
			return id
		}
	}
	return ""
}
