package web

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/storage/memory/v2"
	"github.com/quangnv/accountd/internal/mail"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"github.com/quangnv/accountd/internal/users"
	"github.com/quangnv/accountd/model"
)

// fakeUserService stubs the handler-facing service surface. Methods not
// overridden here panic through the embedded nil interface if reached.
type fakeUserService struct {
	UserService
	user    *model.User
	authErr error
	byIDErr error
}

func (f *fakeUserService) Authenticate(ctx context.Context, identifier string, password string) (*model.User, error) {
	if f.authErr != nil {
		return nil, f.authErr
	}
	return f.user, nil
}

func (f *fakeUserService) RecordLogin(ctx context.Context, user *model.User) error {
	return nil
}

func (f *fakeUserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	if f.byIDErr != nil {
		return nil, f.byIDErr
	}
	return f.user, nil
}

func (f *fakeUserService) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if f.user != nil && (strings.EqualFold(identifier, f.user.Username) || strings.EqualFold(identifier, f.user.Email)) {
		return f.user, nil
	}
	return nil, users.ErrUserNotFound
}

func (f *fakeUserService) ActivationToken(user *model.User) string {
	return "3k-deadbeef"
}

type fakeMailSender struct {
	sent []*mail.Message
	err  error
}

func (f *fakeMailSender) Send(message *mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, message)
	return nil
}

func newTestApp(t *testing.T, svc UserService, sender mail.MailSender) *fiber.App {
	t.Helper()
	if err := render.Initialize(map[string]interface{}{"siteName": "test"}, ""); err != nil {
		t.Fatalf("render.Initialize failed: %v", err)
	}

	app := fiber.New()
	app.Use(sessions.New(sessions.Config{
		Storage: memory.New(memory.Config{GCInterval: time.Minute}),
	}))

	loginHandler := NewLoginHandler(svc)
	registerHandler := NewRegisterHandler(svc, sender)
	profileHandler := NewProfileHandler(svc)
	app.Get("/login", loginHandler.GetLogin)
	app.Post("/login", loginHandler.PostLogin)
	app.Post("/resend-confirmation", registerHandler.PostResendConfirmation)
	app.Get("/profile", profileHandler.GetProfile)
	return app
}

func postForm(t *testing.T, app *fiber.App, path string, cookie string, form string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if cookie != "" {
		req.Header.Set("Cookie", cookie)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("POST %s failed: %v", path, err)
	}
	return resp
}

func sessionCookie(t *testing.T, resp *http.Response) string {
	t.Helper()
	var cookie string
	for _, c := range resp.Cookies() {
		if c.Value != "" {
			cookie = c.Name + "=" + c.Value
		}
	}
	if cookie == "" {
		t.Fatal("response carries no session cookie")
	}
	return cookie
}

func inactiveTestUser() *model.User {
	return &model.User{ID: 7, Username: "alice", Email: "alice@example.com", Active: false}
}

func TestResendConfirmationFlow(t *testing.T) {
	svc := &fakeUserService{user: inactiveTestUser(), authErr: users.ErrUserInactive}
	sender := &fakeMailSender{}
	app := newTestApp(t, svc, sender)

	// inactive login records the pending marker in the session
	resp := postForm(t, app, "/login", "", "identifier=alice&password=secret123")
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("inactive login status = %d, want %d", resp.StatusCode, fiber.StatusUnauthorized)
	}
	cookie := sessionCookie(t, resp)

	// resend dispatches a fresh activation mail to the account's address
	resp = postForm(t, app, "/resend-confirmation", cookie, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("resend status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("dispatched %d mails, want 1", len(sender.sent))
	}
	if got := sender.sent[0].To[0]; got != "alice@example.com" {
		t.Fatalf("mail sent to %q, want alice@example.com", got)
	}
	if !strings.Contains(sender.sent[0].Body, "/activate/") {
		t.Fatalf("mail body is missing the activation link:\n%s", sender.sent[0].Body)
	}

	// the marker is consumed: a second resend is a silent no-op
	resp = postForm(t, app, "/resend-confirmation", cookie, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("repeat resend status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("repeat resend dispatched %d mails, want still 1", len(sender.sent))
	}
}

func TestResendConfirmationWithoutMarker(t *testing.T) {
	svc := &fakeUserService{user: inactiveTestUser()}
	sender := &fakeMailSender{}
	app := newTestApp(t, svc, sender)

	resp := postForm(t, app, "/resend-confirmation", "", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(sender.sent) != 0 {
		t.Fatalf("dispatched %d mails without a marker, want 0", len(sender.sent))
	}
}

func TestResendConfirmationKeepsMarkerOnSendFailure(t *testing.T) {
	svc := &fakeUserService{user: inactiveTestUser(), authErr: users.ErrUserInactive}
	sender := &fakeMailSender{err: errors.New("smtp unavailable")}
	app := newTestApp(t, svc, sender)

	resp := postForm(t, app, "/login", "", "identifier=alice&password=secret123")
	cookie := sessionCookie(t, resp)

	if resp := postForm(t, app, "/resend-confirmation", cookie, ""); resp.StatusCode == fiber.StatusOK {
		t.Fatal("failed dispatch still reported success")
	}

	// the marker survived the failure, so a retry can still dispatch
	sender.err = nil
	resp = postForm(t, app, "/resend-confirmation", cookie, "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("retry status = %d, want %d", resp.StatusCode, fiber.StatusOK)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("retry dispatched %d mails, want 1", len(sender.sent))
	}
}
