package auth

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/atharvakonge/paper-trader/internal/apperrs"
	"github.com/atharvakonge/paper-trader/internal/config"
	"github.com/atharvakonge/paper-trader/internal/models"
)

type sessionClaims struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// SessionManager issues and verifies the signed session token carried in the session cookie.
type SessionManager struct {
	secret      []byte
	cookieName  string
	ttl         time.Duration
	rememberTTL time.Duration
	secure      bool
	now         func() time.Time
}

func NewSessionManager(cfg config.Session, secure bool) *SessionManager {
	return &SessionManager{
		secret:      []byte(cfg.Secret),
		cookieName:  cfg.CookieName,
		ttl:         cfg.TTL,
		rememberTTL: cfg.RememberTTL,
		secure:      secure,
		now:         time.Now,
	}
}

// Issue signs a token for id. remember selects the long lifetime.
func (m *SessionManager) Issue(id models.Identity, remember bool) (token string, ttl time.Duration, err error) {
	ttl = m.ttl
	if remember {
		ttl = m.rememberTTL
	}

	now := m.now()
	claims := sessionClaims{
		Email:    id.Email,
		Username: id.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", 0, fmt.Errorf("sign session: %w", err)
	}
	return token, ttl, nil
}

// Verify checks signature and expiry. Every failure is ErrUnauthenticated.
func (m *SessionManager) Verify(token string) (models.Identity, error) {
	if token == "" {
		return models.Identity{}, apperrs.ErrUnauthenticated
	}

	var claims sessionClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", apperrs.ErrUnauthenticated, err)
	}

	userID, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return models.Identity{}, fmt.Errorf("%w: bad subject %q", apperrs.ErrUnauthenticated, claims.Subject)
	}

	return models.Identity{UserID: userID, Email: claims.Email, Username: claims.Username}, nil
}

func (m *SessionManager) SetCookie(c *gin.Context, token string, ttl time.Duration) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, token, int(ttl.Seconds()), "/", "", m.secure, true)
}

func (m *SessionManager) ClearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

// FromRequest returns the identity in the request's session cookie.
func (m *SessionManager) FromRequest(r *http.Request) (models.Identity, error) {
	cookie, err := r.Cookie(m.cookieName)
	if err != nil {
		return models.Identity{}, apperrs.ErrUnauthenticated
	}
	return m.Verify(cookie.Value)
}
