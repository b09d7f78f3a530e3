package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/audit"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"golang.org/x/crypto/bcrypt"
)

type AccountSettingsHandler struct {
	userService UserService
}

func (h *AccountSettingsHandler) GetChangePassword(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if !session.IsAuthenticated() {
		return redirect(ctx, "/login")
	}
	return render.RenderChangePasswordPage(ctx, "")
}

func (h *AccountSettingsHandler) PostChangePassword(ctx *fiber.Ctx) error {
	currentPassword := ctx.FormValue("currentPassword")
	newPassword := ctx.FormValue("newPassword")

	session := sessions.Get(ctx)
	if !session.IsAuthenticated() {
		return redirect(ctx, "/login")
	}

	user, err := h.userService.GetUserByID(ctx.Context(), session.UserID)
	if err != nil {
		return forceLogout(ctx, "session_expired")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(currentPassword)); err != nil {
		return render.RenderChangePasswordPage(ctx, MsgIncorrectPassword)
	}

	if err := validatePassword(newPassword); err != nil {
		return render.RenderChangePasswordPage(ctx, err.Error())
	}

	if err := h.userService.UpdatePassword(ctx.Context(), user.ID, newPassword); err != nil {
		return err
	}

	audit.Log(ctx.Context(), audit.EventTypePasswordChange, audit.Record{
		UserID:     user.ID,
		Identifier: user.Email,
		IP:         ctx.IP(),
	})
	sessions.Destroy(ctx)
	return render.RenderPasswordUpdatedPage(ctx)
}

func NewAccountSettingsHandler(userService UserService) *AccountSettingsHandler {
	return &AccountSettingsHandler{
		userService: userService,
	}
}
