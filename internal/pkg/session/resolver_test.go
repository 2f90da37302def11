package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/storefront-bff/internal/config"
	"github.com/your-org/storefront-bff/internal/infrastructure/store"
	"github.com/your-org/storefront-bff/internal/pkg/auth"
)

func setupTestResolver(t *testing.T) (*Resolver, *auth.JWTManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-at-least-32-characters-long"
	cfg.JWT.AccessTokenExpiry = time.Hour

	jwtManager := auth.NewJWTManager(cfg)
	return NewResolver(jwtManager, store.New(client, time.Hour, logger), logger), jwtManager
}

func testContext(t *testing.T, header http.Header) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != nil {
		req.Header = header
	}
	c.Request = req
	return c, rec
}

func TestCurrent_AnonymousLazilyCreatesSession(t *testing.T) {
	resolver, _ := setupTestResolver(t)
	c, rec := testContext(t, nil)

	identity := resolver.Current(c)
	assert.False(t, identity.IsAuthenticated())
	assert.NotEmpty(t, identity.AnonymousID)

	// Cookie is set for subsequent requests
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, CookieName, cookies[0].Name)
	assert.Equal(t, identity.AnonymousID, cookies[0].Value)
}

func TestCurrent_AnonymousReusesCookieSession(t *testing.T) {
	resolver, _ := setupTestResolver(t)

	header := http.Header{}
	header.Set("Cookie", CookieName+"=abc")
	c, _ := testContext(t, header)

	identity := resolver.Current(c)
	assert.Equal(t, "abc", identity.AnonymousID)
	assert.Equal(t, "session:abc", identity.OwnerKey())
}

func TestCurrent_AuthenticatedFromBearerToken(t *testing.T) {
	resolver, jwtManager := setupTestResolver(t)

	token, err := jwtManager.Generate("42", "jo@example.com", "Jo")
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	c, _ := testContext(t, header)

	identity := resolver.Current(c)
	require.True(t, identity.IsAuthenticated())
	assert.Equal(t, "42", identity.User.ID)
	assert.Equal(t, "jo@example.com", identity.User.Email)
	assert.Equal(t, "user:42", identity.OwnerKey())
	assert.Empty(t, identity.AnonymousID)
}

func TestCurrent_InvalidTokenFallsBackToAnonymous(t *testing.T) {
	resolver, _ := setupTestResolver(t)

	header := http.Header{}
	header.Set("Authorization", "Bearer garbage")
	c, _ := testContext(t, header)

	identity := resolver.Current(c)
	assert.False(t, identity.IsAuthenticated())
	assert.NotEmpty(t, identity.AnonymousID)
}

func TestCurrent_MemoizedPerRequest(t *testing.T) {
	resolver, _ := setupTestResolver(t)
	c, _ := testContext(t, nil)

	first := resolver.Current(c)
	second := resolver.Current(c)
	assert.Equal(t, first.AnonymousID, second.AnonymousID)
}

func TestAuthenticate_DiscardsAnonymousSession(t *testing.T) {
	resolver, jwtManager := setupTestResolver(t)

	token, err := jwtManager.Generate("42", "jo@example.com", "Jo")
	require.NoError(t, err)

	// Anonymous session "abc" authenticating
	header := http.Header{}
	header.Set("Cookie", CookieName+"=abc")
	c, rec := testContext(t, header)

	before := resolver.Current(c)
	assert.Equal(t, "abc", before.AnonymousID)

	identity, err := resolver.Authenticate(c, token)
	require.NoError(t, err)
	require.True(t, identity.IsAuthenticated())
	assert.Equal(t, "42", identity.User.ID)

	// Subsequent identity reads report the authenticated user
	after := resolver.Current(c)
	assert.True(t, after.IsAuthenticated())
	assert.Empty(t, after.AnonymousID)

	// The anonymous cookie is expired
	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == CookieName && cookie.MaxAge < 0 {
			cleared = true
		}
	}
	assert.True(t, cleared)
}

func TestAuthenticate_RejectsInvalidToken(t *testing.T) {
	resolver, _ := setupTestResolver(t)
	c, _ := testContext(t, nil)

	_, err := resolver.Authenticate(c, "garbage")
	assert.Error(t, err)
}

func TestClearCredential_ReturnsPreviousIdentity(t *testing.T) {
	resolver, jwtManager := setupTestResolver(t)

	token, err := jwtManager.Generate("42", "jo@example.com", "Jo")
	require.NoError(t, err)

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	c, _ := testContext(t, header)

	previous := resolver.ClearCredential(c)
	require.True(t, previous.IsAuthenticated())
	assert.Equal(t, "42", previous.User.ID)

	current := resolver.Current(c)
	assert.False(t, current.IsAuthenticated())
	assert.NotEmpty(t, current.AnonymousID)
}

func TestOnChange_NotifiesAndUnsubscribes(t *testing.T) {
	resolver, jwtManager := setupTestResolver(t)

	token, err := jwtManager.Generate("42", "jo@example.com", "Jo")
	require.NoError(t, err)

	var changes []Identity
	unsubscribe := resolver.OnChange(func(identity Identity) {
		changes = append(changes, identity)
	})

	c, _ := testContext(t, nil)
	_, err = resolver.Authenticate(c, token)
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.True(t, changes[0].IsAuthenticated())

	unsubscribe()

	c2, _ := testContext(t, nil)
	resolver.ClearCredential(c2)
	assert.Len(t, changes, 1)
}
