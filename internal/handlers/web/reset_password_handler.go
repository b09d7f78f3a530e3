package web

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/audit"
	"github.com/quangnv/accountd/internal/mail"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"github.com/quangnv/accountd/internal/tokens"
	"github.com/quangnv/accountd/internal/users"
)

type ResetPasswordHandler struct {
	userService UserService
	mailSender  mail.MailSender
}

func NewResetPasswordHandler(userService UserService, mailSender mail.MailSender) *ResetPasswordHandler {
	return &ResetPasswordHandler{
		userService: userService,
		mailSender:  mailSender,
	}
}

func (h *ResetPasswordHandler) GetForgotPassword(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}
	return render.RenderForgotPasswordPage(ctx, render.ForgotPasswordPageData{})
}

// PostForgotPassword mails a reset link when the address belongs to an active
// account. The rendered page is the same either way, so the form cannot be
// used to probe which addresses are registered.
func (h *ResetPasswordHandler) PostForgotPassword(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	email := strings.ToLower(strings.TrimSpace(ctx.FormValue("email")))

	pageData := render.ForgotPasswordPageData{Email: email}
	if err := validateEmail(email); err != nil {
		pageData.ErrorMsg = err.Error()
		return render.RenderForgotPasswordPage(ctx, pageData)
	}

	user, err := h.userService.GetUserByEmail(ctx.Context(), email)
	if err != nil && !errors.Is(err, users.ErrUserNotFound) {
		return err
	}

	if err == nil && user.Active {
		uid := tokens.EncodeUID(user.ID)
		token := h.userService.ResetToken(user)
		resetURL := fmt.Sprintf("%s/reset/%s/%s", ctx.BaseURL(), uid, token)
		if err := mail.SendResetPasswordLink(h.mailSender, user.Email, resetURL); err != nil {
			slog.Error("Failed to send reset password email", "email", user.Email, "error", err)
			pageData.ErrorMsg = MsgMailSendFailed
			return render.RenderForgotPasswordPage(ctx, pageData)
		}
		audit.Log(ctx.Context(), audit.EventTypePasswordReset, audit.Record{
			UserID:     user.ID,
			Identifier: email,
			IP:         ctx.IP(),
			Detail:     "reset link sent",
		})
	}

	return render.RenderForgotPasswordPage(ctx, render.ForgotPasswordPageData{EmailSent: true})
}

func (h *ResetPasswordHandler) GetResetPassword(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	if _, err := h.userService.GetUserForReset(ctx.Context(), ctx.Params("uid"), ctx.Params("token")); err != nil {
		return fiber.ErrNotFound
	}
	return render.RenderSetNewPasswordPage(ctx, "")
}

func (h *ResetPasswordHandler) PostResetPassword(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	user, err := h.userService.GetUserForReset(ctx.Context(), ctx.Params("uid"), ctx.Params("token"))
	if err != nil {
		return fiber.ErrNotFound
	}

	newPassword := ctx.FormValue("newPassword")
	if err := validatePassword(newPassword); err != nil {
		return render.RenderSetNewPasswordPage(ctx, err.Error())
	}

	if err := h.userService.UpdatePassword(ctx.Context(), user.ID, newPassword); err != nil {
		return err
	}

	audit.Log(ctx.Context(), audit.EventTypePasswordReset, audit.Record{
		UserID:     user.ID,
		Identifier: user.Email,
		IP:         ctx.IP(),
		Detail:     "password updated",
	})
	sessions.Destroy(ctx)
	return render.RenderPasswordUpdatedPage(ctx)
}
