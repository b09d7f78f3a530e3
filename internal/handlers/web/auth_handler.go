package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
)

type AuthHandler struct {
	userService UserService
}

func (h *AuthHandler) GetHome(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if !session.IsAuthenticated() {
		return render.RenderHomePage(ctx, render.HomePageData{})
	}

	user, err := h.userService.GetUserByID(ctx.Context(), session.UserID)
	if err != nil {
		return forceLogout(ctx, "session_expired")
	}

	return render.RenderHomePage(ctx, render.HomePageData{
		LoggedIn: true,
		Username: user.Username,
		Email:    user.Email,
	})
}

func NewAuthHandler(userService UserService) *AuthHandler {
	return &AuthHandler{
		userService: userService,
	}
}
