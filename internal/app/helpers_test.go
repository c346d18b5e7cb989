package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-todo-api/internal/config"
	"go-todo-api/internal/model"
	"go-todo-api/internal/session"
)

const (
	testSecret = "test-secret"
	testIssuer = "go-todo-api"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *model.APIError `json:"error"`
	Meta    *model.Meta     `json:"meta"`
}

type testClient struct {
	t      *testing.T
	server *httptest.Server
	jar    *cookiejar.Jar
	http   *http.Client
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		ServerPort:       "8080",
		RequestTimeout:   5 * time.Second,
		LogLevel:         "error",
		LogFormat:        "pretty",
		DatabaseDriver:   config.DriverSQLite,
		DatabaseURL:      "file:" + filepath.Join(t.TempDir(), "app.db"),
		DBMaxConns:       1,
		JWTSecret:        testSecret,
		JWTIssuer:        testIssuer,
		JWTAccessTTL:     15 * time.Minute,
		JWTRefreshTTL:    24 * time.Hour,
		CookieSecure:     false,
		CORSOrigins:      []string{"http://localhost:3000"},
		RateLimitRPM:     1000,
		AuthRateLimitRPM: 1000,
		BcryptCost:       bcrypt.MinCost,
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func newTestServer(t *testing.T, overrides ...func(*config.Config)) *httptest.Server {
	t.Helper()

	cfg := testConfig(t)
	for _, override := range overrides {
		override(cfg)
	}

	handler, closeStores, err := NewHandler(context.Background(), cfg)
	require.NoError(t, err)

	server := httptest.NewServer(handler)
	t.Cleanup(func() {
		server.Close()
		closeStores()
	})
	return server
}

// newClient returns a browser-like client with its own cookie jar.
func newClient(t *testing.T, server *httptest.Server) *testClient {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &testClient{
		t:      t,
		server: server,
		jar:    jar,
		http:   &http.Client{Jar: jar, Timeout: 10 * time.Second},
	}
}

func (c *testClient) do(method string, path string, body any) (*http.Response, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, c.server.URL+path, reader)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })

	raw, err := io.ReadAll(resp.Body)
	require.NoError(c.t, err)

	var env envelope
	if len(raw) > 0 && resp.Header.Get("Content-Type") == "application/json" {
		require.NoError(c.t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func (c *testClient) cookie(name string) (string, bool) {
	u, err := url.Parse(c.server.URL)
	require.NoError(c.t, err)

	for _, ck := range c.jar.Cookies(u) {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}

func (c *testClient) register(username string, password string) model.UserView {
	c.t.Helper()

	resp, env := c.do(http.MethodPost, "/register", map[string]string{"username": username, "password": password})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, env.Error)

	var user model.UserView
	require.NoError(c.t, json.Unmarshal(env.Data, &user))
	return user
}

func (c *testClient) login(username string, password string) {
	c.t.Helper()

	resp, env := c.do(http.MethodPost, "/login", map[string]string{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, resp.StatusCode, env.Error)
}

func (c *testClient) createTodo(title string) model.Todo {
	c.t.Helper()

	resp, env := c.do(http.MethodPost, "/todo/create", map[string]any{"title": title})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode, env.Error)

	var todo model.Todo
	require.NoError(c.t, json.Unmarshal(env.Data, &todo))
	return todo
}

func decodeData[T any](t *testing.T, env envelope) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func responseCookies(resp *http.Response) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range resp.Cookies() {
		out[c.Name] = c
	}
	return out
}

func testCodec(t *testing.T) *session.Codec {
	t.Helper()

	codec, err := session.NewCodec(testSecret, testIssuer, 15*time.Minute, 24*time.Hour)
	require.NoError(t, err)
	return codec
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
