package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/audit"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"github.com/quangnv/accountd/internal/users"
)

// LoginHandler handles session login and logout
type LoginHandler struct {
	userService UserService
}

func mapLoginError(errorCode string) string {
	switch errorCode {
	case "session_expired":
		return MsgLoginSessionExpired
	default:
		return ""
	}
}

func (h *LoginHandler) GetLogin(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}
	errorCode := ctx.Query("error")
	return render.RenderLoginPage(ctx, render.LoginPageData{
		ErrorMsg: mapLoginError(errorCode),
	})
}

func (h *LoginHandler) PostLogin(ctx *fiber.Ctx) error {
	identifier := strings.TrimSpace(ctx.FormValue("identifier"))
	password := ctx.FormValue("password")

	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	pageData := render.LoginPageData{
		Identifier: identifier,
	}

	user, err := h.userService.Authenticate(ctx.Context(), identifier, password)
	if errors.Is(err, users.ErrUserInactive) {
		// correct password, unconfirmed account: remember who asked so the
		// resend-confirmation form can act on it
		session.SetPendingVerification(identifier)
		audit.Log(ctx.Context(), audit.EventTypeLoginFailure, audit.Record{
			Identifier: identifier,
			IP:         ctx.IP(),
			UserAgent:  string(ctx.Request().Header.UserAgent()),
			Detail:     "account not activated",
		})
		pageData.ErrorMsg = MsgLoginInactive
		pageData.ShowResend = true
		return render.RenderLoginPage(ctx, pageData)
	}
	if err != nil {
		audit.Log(ctx.Context(), audit.EventTypeLoginFailure, audit.Record{
			Identifier: identifier,
			IP:         ctx.IP(),
			UserAgent:  string(ctx.Request().Header.UserAgent()),
		})
		pageData.ErrorMsg = MsgLoginWrongCredentials
		return render.RenderLoginPage(ctx, pageData)
	}

	if err := h.userService.RecordLogin(ctx.Context(), user); err != nil {
		return err
	}
	if err := session.Establish(ctx, user.ID); err != nil {
		return err
	}
	audit.Log(ctx.Context(), audit.EventTypeLoginSuccess, audit.Record{
		UserID:     user.ID,
		Identifier: identifier,
		IP:         ctx.IP(),
		UserAgent:  string(ctx.Request().Header.UserAgent()),
	})
	return ctx.Redirect("/")
}

func (h *LoginHandler) PostLogout(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		audit.Log(ctx.Context(), audit.EventTypeLogout, audit.Record{
			UserID: session.UserID,
			IP:     ctx.IP(),
		})
	}
	return forceLogout(ctx, "")
}

// NewLoginHandler returns a new instance of LoginHandler.
func NewLoginHandler(userService UserService) *LoginHandler {
	return &LoginHandler{
		userService: userService,
	}
}
