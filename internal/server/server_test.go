package server_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/crypto/bcrypt"

	"github.com/hiroyoshii/twitter-clone-api/internal/config"
	"github.com/hiroyoshii/twitter-clone-api/internal/server"
)

// newTestServer builds the whole stack on an in-memory database and
// returns its router. Requests go through the real middleware chain,
// handlers, services and repositories — only the listener is fake.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := config.Config{
		Port:              0,
		DBPath:            ":memory:",
		SecretKey:         "test-secret-at-least-16-chars!!",
		SessionCookieName: "session_id",
		SessionTTL:        time.Hour,
		BcryptCost:        bcrypt.MinCost,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		t.Fatalf("server.New: %v", err)
	}
	return srv.Router()
}

// do sends a JSON request with the given cookies and decodes the response.
func do(t *testing.T, h http.Handler, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

// register creates an account and returns nothing; login returns the
// session cookie the server set.
func register(t *testing.T, h http.Handler, handle, email string) {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/auth/register", map[string]any{
		"e_mail":    email,
		"password":  "password123",
		"user_id":   handle,
		"user_name": "User " + handle,
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("register %s: status %d, body %s", handle, rr.Code, rr.Body.String())
	}
}

func login(t *testing.T, h http.Handler, email string) *http.Cookie {
	t.Helper()
	rr := do(t, h, http.MethodPost, "/auth/login", map[string]any{
		"e_mail":   email,
		"password": "password123",
	}, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", email, rr.Code, rr.Body.String())
	}
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session_id" && c.Value != "" {
			return c
		}
	}
	t.Fatal("login did not set the session_id cookie")
	return nil
}

// =========================================================================
// END-TO-END FLOW
// =========================================================================

func TestRegisterLoginAndPost(t *testing.T) {
	h := newTestServer(t)

	register(t, h, "alice", "alice@example.com")
	cookie := login(t, h, "alice@example.com")

	// The cookie must be locked down.
	assert.True(t, cookie.HttpOnly, "session cookie should be HttpOnly")
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	// /auth/me resolves the session to the account.
	rr := do(t, h, http.MethodGet, "/auth/me", nil, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusOK, rr.Code)

	var me struct {
		UserID   string `json:"user_id"`
		Email    string `json:"e_mail"`
		Password string `json:"password_hash"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &me))
	assert.Equal(t, "alice", me.UserID)
	assert.Empty(t, me.Password, "the hash must never appear in a response")

	// Post a tweet and read it back from the timeline.
	rr = do(t, h, http.MethodPost, "/tweets", map[string]any{"content": "hello world"}, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusOK, rr.Code)

	var created struct {
		TweetID  int64  `json:"tweet_id"`
		Content  string `json:"content"`
		UserName string `json:"user_name"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "hello world", created.Content)
	assert.Equal(t, "User alice", created.UserName)

	rr = do(t, h, http.MethodGet, "/tweets?page=1&page_size=10", nil, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusOK, rr.Code)

	var page struct {
		Tweets   []json.RawMessage `json:"tweets"`
		Total    int64             `json:"total"`
		Page     int               `json:"page"`
		PageSize int               `json:"page_size"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &page))
	assert.Len(t, page.Tweets, 1)
	assert.Equal(t, int64(1), page.Total)
	assert.Equal(t, 10, page.PageSize)
}

func TestLikeToggleThroughTheAPI(t *testing.T) {
	h := newTestServer(t)

	register(t, h, "alice", "alice@example.com")
	register(t, h, "bob", "bob@example.com")
	alice := login(t, h, "alice@example.com")
	bob := login(t, h, "bob@example.com")

	rr := do(t, h, http.MethodPost, "/tweets", map[string]any{"content": "like me"}, []*http.Cookie{alice})
	assert.Equal(t, http.StatusOK, rr.Code)
	var created struct {
		TweetID int64 `json:"tweet_id"`
	}
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	// bob likes it — twice; the second is still a success.
	url := "/tweets/1/like"
	rr = do(t, h, http.MethodPost, url, nil, []*http.Cookie{bob})
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodPost, url, nil, []*http.Cookie{bob})
	assert.Equal(t, http.StatusOK, rr.Code)

	// bob sees his own flag; alice sees the count but not the flag.
	var detail struct {
		LikeCount int64 `json:"like_count"`
		IsLiked   bool  `json:"is_liked"`
	}
	rr = do(t, h, http.MethodGet, "/tweets/1", nil, []*http.Cookie{bob})
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.LikeCount)
	assert.True(t, detail.IsLiked)

	rr = do(t, h, http.MethodGet, "/tweets/1", nil, []*http.Cookie{alice})
	assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &detail))
	assert.Equal(t, int64(1), detail.LikeCount)
	assert.False(t, detail.IsLiked)

	// Unlike; removing again is a 404.
	rr = do(t, h, http.MethodDelete, url, nil, []*http.Cookie{bob})
	assert.Equal(t, http.StatusOK, rr.Code)
	rr = do(t, h, http.MethodDelete, url, nil, []*http.Cookie{bob})
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// =========================================================================
// AUTH BOUNDARY
// =========================================================================

func TestProtectedRoutesRequireSession(t *testing.T) {
	h := newTestServer(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/auth/me"},
		{http.MethodGet, "/tweets"},
		{http.MethodPost, "/tweets"},
		{http.MethodDelete, "/tweets/1"},
		{http.MethodPost, "/tweets/1/like"},
		{http.MethodGet, "/replies/1"},
	}

	for _, ep := range protected {
		rr := do(t, h, ep.method, ep.path, nil, nil)
		assert.Equalf(t, http.StatusUnauthorized, rr.Code, "%s %s without a cookie", ep.method, ep.path)
	}

	// A garbage cookie is just as unauthorized as none.
	bad := &http.Cookie{Name: "session_id", Value: "not.a.jwt"}
	rr := do(t, h, http.MethodGet, "/auth/me", nil, []*http.Cookie{bad})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestPublicRoutes(t *testing.T) {
	h := newTestServer(t)

	rr := do(t, h, http.MethodGet, "/", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "message")

	rr = do(t, h, http.MethodGet, "/metrics", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

// =========================================================================
// ERROR MAPPING
// =========================================================================

func TestErrorStatuses(t *testing.T) {
	h := newTestServer(t)
	register(t, h, "alice", "alice@example.com")
	cookie := login(t, h, "alice@example.com")

	t.Run("duplicate registration is 409", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/auth/register", map[string]any{
			"e_mail":    "alice@example.com",
			"password":  "password123",
			"user_id":   "someone-else",
			"user_name": "Someone",
		}, nil)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("bad credentials are a uniform 401", func(t *testing.T) {
		for _, body := range []map[string]any{
			{"e_mail": "alice@example.com", "password": "wrong password"},
			{"e_mail": "ghost@example.com", "password": "password123"},
		} {
			rr := do(t, h, http.MethodPost, "/auth/login", body, nil)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
		}
	})

	t.Run("missing tweet is 404", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/tweets/999", nil, []*http.Cookie{cookie})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("empty content is 400", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/tweets", map[string]any{"content": "  "}, []*http.Cookie{cookie})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("cross-thread parent reply is 400", func(t *testing.T) {
		for _, content := range []string{"thread A", "thread B"} {
			rr := do(t, h, http.MethodPost, "/tweets", map[string]any{"content": content}, []*http.Cookie{cookie})
			assert.Equal(t, http.StatusOK, rr.Code)
		}
		// Reply on tweet 1, then try to nest under it from tweet 2.
		rr := do(t, h, http.MethodPost, "/tweets/1/replies", map[string]any{"content": "on A"}, []*http.Cookie{cookie})
		assert.Equal(t, http.StatusOK, rr.Code)
		var reply struct {
			ReplyID int64 `json:"reply_id"`
		}
		assert.NoError(t, json.Unmarshal(rr.Body.Bytes(), &reply))

		rr = do(t, h, http.MethodPost, "/tweets/2/replies", map[string]any{
			"content":         "grafted",
			"parent_reply_id": reply.ReplyID,
		}, []*http.Cookie{cookie})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLogoutClearsCookie(t *testing.T) {
	h := newTestServer(t)
	register(t, h, "alice", "alice@example.com")
	cookie := login(t, h, "alice@example.com")

	rr := do(t, h, http.MethodPost, "/auth/logout", nil, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusOK, rr.Code)

	var cleared *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "session_id" {
			cleared = c
		}
	}
	if assert.NotNil(t, cleared, "logout should rewrite the session cookie") {
		assert.Empty(t, cleared.Value)
		assert.Negative(t, cleared.MaxAge)
	}
}
