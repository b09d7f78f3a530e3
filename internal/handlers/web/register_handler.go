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
	"github.com/quangnv/accountd/model"
)

type RegisterHandler struct {
	userService UserService
	mailSender  mail.MailSender
}

func NewRegisterHandler(userService UserService, mailSender mail.MailSender) *RegisterHandler {
	return &RegisterHandler{
		userService: userService,
		mailSender:  mailSender,
	}
}

func (h *RegisterHandler) activationURL(ctx *fiber.Ctx, user *model.User) string {
	uid := tokens.EncodeUID(user.ID)
	token := h.userService.ActivationToken(user)
	return fmt.Sprintf("%s/activate/%s/%s", ctx.BaseURL(), uid, token)
}

func (h *RegisterHandler) GetRegister(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}
	return render.RenderRegisterPage(ctx, render.RegisterPageData{})
}

func (h *RegisterHandler) PostRegister(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	var (
		email     = strings.ToLower(strings.TrimSpace(ctx.FormValue("email")))
		username  = strings.ToLower(strings.TrimSpace(ctx.FormValue("username")))
		password  = ctx.FormValue("password")
		firstName = strings.TrimSpace(ctx.FormValue("firstName"))
		lastName  = strings.TrimSpace(ctx.FormValue("lastName"))
		birthDate = strings.TrimSpace(ctx.FormValue("birthDate"))
	)

	pageData := render.RegisterPageData{
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: birthDate,
	}

	pageData.FormErrors = validateRegisterForm(email, username, password)
	parsedBirthDate, err := parseBirthDate(birthDate)
	if err != nil {
		pageData.FormErrors["birthDate"] = err.Error()
	}
	if len(pageData.FormErrors) > 0 {
		return render.RenderRegisterPage(ctx, pageData)
	}

	userOpts := users.RegisterOptions{
		Email:     email,
		Username:  username,
		Password:  password,
		FirstName: firstName,
		LastName:  lastName,
		BirthDate: parsedBirthDate,
	}
	user, err := h.userService.Register(ctx.Context(), userOpts)
	if err != nil {
		var verr *users.ValidationError
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			pageData.FormErrors["username"] = MsgUsernameTaken
		case errors.Is(err, users.ErrEmailRegistered):
			pageData.FormErrors["email"] = MsgEmailRegistered
		case errors.As(err, &verr):
			switch verr.Code {
			case users.CodeUnderage:
				pageData.FormErrors["birthDate"] = verr.Message
			default:
				pageData.FormErrors["username"] = verr.Message
			}
		default:
			slog.Error("Failed to create user", "error", err)
			return err
		}
		return render.RenderRegisterPage(ctx, pageData)
	}

	if err := mail.SendActivationLink(h.mailSender, user.Email, h.activationURL(ctx, user)); err != nil {
		slog.Error("Failed to send activation email", "email", user.Email, "error", err)
		pageData.ErrorMsg = MsgMailSendFailed
		return render.RenderRegisterPage(ctx, pageData)
	}

	audit.Log(ctx.Context(), audit.EventTypeRegister, audit.Record{
		UserID:     user.ID,
		Identifier: user.Email,
		IP:         ctx.IP(),
		UserAgent:  string(ctx.Request().Header.UserAgent()),
	})
	return render.RenderCheckEmailPage(ctx, user.Email)
}

// GetActivate consumes an activation link. A repeated visit on an already
// activated account still lands on the success page.
func (h *RegisterHandler) GetActivate(ctx *fiber.Ctx) error {
	uid := ctx.Params("uid")
	token := ctx.Params("token")

	user, err := h.userService.Activate(ctx.Context(), uid, token)
	if err != nil {
		return render.RenderActivationFailurePage(ctx)
	}

	audit.Log(ctx.Context(), audit.EventTypeActivation, audit.Record{
		UserID:     user.ID,
		Identifier: user.Email,
		IP:         ctx.IP(),
	})
	return render.RenderActivationSuccessPage(ctx, user.Email)
}

// PostResendConfirmation re-sends the activation email for the identifier
// remembered from the last inactive-account login attempt. The marker is
// consumed either way and the response never tells whether a mail went out.
func (h *RegisterHandler) PostResendConfirmation(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if session.IsAuthenticated() {
		return ctx.Redirect("/")
	}

	identifier := session.PopPendingVerification()
	if identifier == "" {
		return render.RenderCheckEmailPage(ctx, "")
	}

	user, err := h.userService.GetUserByIdentifier(ctx.Context(), identifier)
	if err != nil || user.Active {
		return render.RenderCheckEmailPage(ctx, "")
	}

	if err := mail.SendActivationLink(h.mailSender, user.Email, h.activationURL(ctx, user)); err != nil {
		slog.Error("Failed to resend activation email", "email", user.Email, "error", err)
		session.SetPendingVerification(identifier)
		return render.RenderLoginPage(ctx, render.LoginPageData{
			Identifier: identifier,
			ErrorMsg:   MsgMailSendFailed,
			ShowResend: true,
		})
	}

	audit.Log(ctx.Context(), audit.EventTypeResendConfirm, audit.Record{
		UserID:     user.ID,
		Identifier: identifier,
		IP:         ctx.IP(),
	})
	return render.RenderCheckEmailPage(ctx, user.Email)
}
