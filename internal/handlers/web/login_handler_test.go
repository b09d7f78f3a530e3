package web

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/users"
	"github.com/quangnv/accountd/model"
)

func getPath(t *testing.T, app *fiber.App, path string, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("GET %s failed: %v", path, err)
	}
	return resp
}

func TestStaleSessionForcesLogin(t *testing.T) {
	user := &model.User{ID: 7, Username: "alice", Email: "alice@example.com", Active: true}
	svc := &fakeUserService{user: user}
	app := newTestApp(t, svc, &fakeMailSender{})

	resp := postForm(t, app, "/login", "", "identifier=alice&password=secret123")
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("login status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	cookie := sessionCookie(t, resp)

	// the account vanishes underneath the live session
	svc.byIDErr = users.ErrUserNotFound

	resp = getPath(t, app, "/profile", cookie)
	if resp.StatusCode != fiber.StatusFound {
		t.Fatalf("profile status = %d, want %d", resp.StatusCode, fiber.StatusFound)
	}
	if loc := resp.Header.Get("Location"); loc != "/login?error=session_expired" {
		t.Fatalf("redirect location = %q, want /login?error=session_expired", loc)
	}
}

func TestGetLoginSessionExpiredMessage(t *testing.T) {
	svc := &fakeUserService{}
	app := newTestApp(t, svc, &fakeMailSender{})

	resp := getPath(t, app, "/login?error=session_expired", "")
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	if !strings.Contains(string(body), MsgLoginSessionExpired) {
		t.Fatalf("login page is missing the session-expired notice:\n%s", body)
	}
}
