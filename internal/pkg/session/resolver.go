// internal/pkg/session/resolver.go
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

// CookieName is the anonymous session cookie
const CookieName = "session_id"

const identityContextKey = "identity"

// AuthenticatedUser describes a signed-in user derived from a
// credential token.
type AuthenticatedUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Identity is the current actor: exactly one of User or AnonymousID is
// set at any time.
type Identity struct {
	User        *AuthenticatedUser `json:"user,omitempty"`
	AnonymousID string             `json:"anonymous_id,omitempty"`
}

// IsAuthenticated reports whether the identity carries a signed-in user.
func (i Identity) IsAuthenticated() bool {
	return i.User != nil
}

// OwnerKey returns the key that scopes persisted collections to this
// identity.
func (i Identity) OwnerKey() string {
	if i.User != nil {
		return "user:" + i.User.ID
	}
	return "session:" + i.AnonymousID
}

// sessionMarker records a lazily created anonymous session.
type sessionMarker struct {
	CreatedAt time.Time `json:"created_at"`
}

// Resolver determines the identity of each request. Presence of a
// valid credential token means authenticated; otherwise an anonymous
// session id is lazily created, set as a cookie, and persisted.
// Subscribers are notified whenever the credential changes.
type Resolver struct {
	jwt    *auth.JWTManager
	store  *store.Store
	logger *logrus.Logger

	mu          sync.Mutex
	subscribers map[int]func(Identity)
	nextSubID   int
}

// NewResolver creates a new identity resolver
func NewResolver(jwtManager *auth.JWTManager, st *store.Store, logger *logrus.Logger) *Resolver {
	return &Resolver{
		jwt:         jwtManager,
		store:       st,
		logger:      logger,
		subscribers: make(map[int]func(Identity)),
	}
}

// Current resolves the request's identity, memoized per request.
func (r *Resolver) Current(c *gin.Context) Identity {
	if cached, exists := c.Get(identityContextKey); exists {
		return cached.(Identity)
	}

	identity := r.resolve(c)
	c.Set(identityContextKey, identity)
	return identity
}

// IsAuthenticated reports whether the request carries a valid credential.
func (r *Resolver) IsAuthenticated(c *gin.Context) bool {
	return r.Current(c).IsAuthenticated()
}

func (r *Resolver) resolve(c *gin.Context) Identity {
	// A valid credential token wins over any session cookie
	if tokenString := auth.ExtractTokenFromHeader(c.GetHeader("Authorization")); tokenString != "" {
		if claims, err := r.jwt.Validate(tokenString); err == nil {
			return Identity{User: &AuthenticatedUser{
				ID:    claims.UserID,
				Email: claims.Email,
				Name:  claims.Name,
			}}
		}
		// Invalid token falls through to anonymous
	}

	return Identity{AnonymousID: r.getOrCreateSessionID(c)}
}

// getOrCreateSessionID reads the session cookie or lazily mints and
// persists a new anonymous session id.
func (r *Resolver) getOrCreateSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(CookieName)
	if err != nil || sessionID == "" {
		sessionID = uuid.New().String()

		// Set session cookie (24 hours)
		c.SetCookie(CookieName, sessionID, 86400, "/", "", false, true)

		if err := r.store.Save(c.Request.Context(), sessionKey(sessionID), sessionMarker{CreatedAt: time.Now().UTC()}); err != nil {
			r.logger.WithError(err).Warn("Failed to persist anonymous session")
		}
	}

	return sessionID
}

// Authenticate validates a credential token and switches the request
// from anonymous to authenticated, discarding the anonymous session id.
// Subscribers are notified of the change.
func (r *Resolver) Authenticate(c *gin.Context, tokenString string) (Identity, error) {
	claims, err := r.jwt.Validate(tokenString)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid credential token: %w", err)
	}

	// Discard the anonymous session identifier
	if sessionID, cerr := c.Cookie(CookieName); cerr == nil && sessionID != "" {
		if derr := r.store.Delete(c.Request.Context(), sessionKey(sessionID)); derr != nil {
			r.logger.WithError(derr).Warn("Failed to discard anonymous session")
		}
	}
	c.SetCookie(CookieName, "", -1, "/", "", false, true)

	identity := Identity{User: &AuthenticatedUser{
		ID:    claims.UserID,
		Email: claims.Email,
		Name:  claims.Name,
	}}
	c.Set(identityContextKey, identity)

	r.notify(identity)
	return identity, nil
}

// ClearCredential switches the request back to a fresh anonymous
// identity, used on logout. Returns the previous identity so callers
// can clear its collections.
func (r *Resolver) ClearCredential(c *gin.Context) Identity {
	previous := r.Current(c)

	sessionID := uuid.New().String()
	c.SetCookie(CookieName, sessionID, 86400, "/", "", false, true)
	if err := r.store.Save(c.Request.Context(), sessionKey(sessionID), sessionMarker{CreatedAt: time.Now().UTC()}); err != nil {
		r.logger.WithError(err).Warn("Failed to persist anonymous session")
	}

	identity := Identity{AnonymousID: sessionID}
	c.Set(identityContextKey, identity)

	r.notify(identity)
	return previous
}

// OnChange registers a callback invoked whenever the credential
// changes. The returned function unsubscribes it.
func (r *Resolver) OnChange(fn func(Identity)) func() {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextSubID
	r.nextSubID++
	r.subscribers[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subscribers, id)
	}
}

func (r *Resolver) notify(identity Identity) {
	r.mu.Lock()
	callbacks := make([]func(Identity), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		callbacks = append(callbacks, fn)
	}
	r.mu.Unlock()

	for _, fn := range callbacks {
		fn(identity)
	}
}

func sessionKey(sessionID string) string {
	return "session:" + sessionID
}
