package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/gardenweeks/internal/metrics"
	"github.com/terraincognita07/gardenweeks/internal/models"
	"github.com/terraincognita07/gardenweeks/internal/services"
	"github.com/terraincognita07/gardenweeks/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const testSecretKey = "0123456789abcdef0123456789abcdef"

var testNow = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

type testApp struct {
	app     *fiber.App
	memory  *store.MemoryStore
	auth    *services.AuthService
	handler *Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	memory := store.NewMemoryStore(store.WithClock(func() time.Time { return testNow }))
	authService := services.NewAuthService(memory, services.WithPasswordHashCost(bcrypt.MinCost))
	handler, err := NewHandler(services.NewBookingService(memory), authService, Options{
		SecretKey: testSecretKey,
		Metrics:   metrics.New(),
	})
	if err != nil {
		t.Fatalf("init handler: %v", err)
	}

	app := fiber.New()
	RegisterRoutes(app, handler)
	app.Use(handler.NotFound)
	return &testApp{app: app, memory: memory, auth: authService, handler: handler}
}

func (env *testApp) do(t *testing.T, method string, path string, body any, cookie string) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}

	request := httptest.NewRequest(method, path, reader)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if cookie != "" {
		request.Header.Set("Cookie", authCookieName+"="+cookie)
	}

	response, err := env.app.Test(request, -1)
	if err != nil {
		t.Fatalf("%s %s request failed: %v", method, path, err)
	}
	t.Cleanup(func() { _ = response.Body.Close() })
	return response
}

func (env *testApp) register(t *testing.T, username string, password string) string {
	t.Helper()

	response := env.do(t, http.MethodPost, "/api/register", credentialsInput{Username: username, Password: password}, "")
	if response.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: expected status 201, got %d", username, response.StatusCode)
	}
	cookie := responseCookieValue(response.Cookies(), authCookieName)
	if cookie == "" {
		t.Fatalf("register %s: expected session cookie", username)
	}
	return cookie
}

func (env *testApp) loginAdmin(t *testing.T) (models.User, string) {
	t.Helper()

	admin, _, err := env.auth.EnsureAdmin("admin", "admin-password")
	if err != nil {
		t.Fatalf("ensure admin: %v", err)
	}
	response := env.do(t, http.MethodPost, "/api/login", credentialsInput{Username: "admin", Password: "admin-password"}, "")
	if response.StatusCode != http.StatusOK {
		t.Fatalf("admin login: expected status 200, got %d", response.StatusCode)
	}
	return admin, responseCookieValue(response.Cookies(), authCookieName)
}

func (env *testApp) userID(t *testing.T, username string) string {
	t.Helper()

	user, err := env.memory.GetUserByUsername(username)
	if err != nil {
		t.Fatalf("load user %s: %v", username, err)
	}
	return user.ID
}

func responseCookieValue(cookies []*http.Cookie, name string) string {
	for _, cookie := range cookies {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}

func decodeJSON(t *testing.T, body io.Reader, target any) {
	t.Helper()

	bytes, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read response body: %v", err)
	}
	if err := json.Unmarshal(bytes, target); err != nil {
		t.Fatalf("decode response body %q: %v", string(bytes), err)
	}
}

func readAPIError(t *testing.T, body io.Reader) string {
	t.Helper()

	payload := map[string]string{}
	decodeJSON(t, body, &payload)
	return payload["error"]
}

func expectStatus(t *testing.T, response *http.Response, want int) {
	t.Helper()

	if response.StatusCode != want {
		body, _ := io.ReadAll(response.Body)
		t.Fatalf("expected status %d, got %d: %s", want, response.StatusCode, string(body))
	}
}
