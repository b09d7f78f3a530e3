package render

import (
	"github.com/gofiber/fiber/v2"
)

type HomePageData struct {
	LoggedIn bool
	Username string
	Email    string
}

type LoginPageData struct {
	Identifier string
	ErrorMsg   string
	ShowResend bool // inactive account: offer the resend-confirmation path
}

type RegisterPageData struct {
	Username   string
	Email      string
	FirstName  string
	LastName   string
	BirthDate  string
	FormErrors map[string]string
	ErrorMsg   string
}

type ProfilePageData struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Bio       string
	Location  string
	Gender    string
	BirthDate string
	Picture   string
	ErrorMsg  string
	Saved     bool
}

type ForgotPasswordPageData struct {
	Email     string
	EmailSent bool
	ErrorMsg  string
}

// renderPage renders a web page template with the site-wide variables and the
// per-session CSRF token merged in.
func renderPage(ctx *fiber.Ctx, statusCode int, name string, vars fiber.Map) error {
	merged := fiber.Map{
		"siteName":  globalVars["siteName"],
		"csrfToken": ctx.Locals("csrfToken"),
	}
	for k, v := range vars {
		merged[k] = v
	}
	body, err := RenderHTML(name, merged)
	if err != nil {
		return err
	}
	ctx.Set("Content-Type", "text/html; charset=utf-8")
	return ctx.Status(statusCode).SendString(body)
}

func RenderHomePage(ctx *fiber.Ctx, data HomePageData) error {
	return renderPage(ctx, fiber.StatusOK, "home", fiber.Map{
		"loggedIn": data.LoggedIn,
		"username": data.Username,
		"email":    data.Email,
	})
}

func RenderLoginPage(ctx *fiber.Ctx, data LoginPageData) error {
	statusCode := fiber.StatusOK
	if data.ErrorMsg != "" {
		statusCode = fiber.StatusUnauthorized
	}
	return renderPage(ctx, statusCode, "login", fiber.Map{
		"identifier": data.Identifier,
		"errorMsg":   data.ErrorMsg,
		"showResend": data.ShowResend,
	})
}

func RenderRegisterPage(ctx *fiber.Ctx, data RegisterPageData) error {
	return renderPage(ctx, fiber.StatusOK, "register", fiber.Map{
		"username":       data.Username,
		"email":          data.Email,
		"firstName":      data.FirstName,
		"lastName":       data.LastName,
		"birthDate":      data.BirthDate,
		"usernameError":  data.FormErrors["username"],
		"emailError":     data.FormErrors["email"],
		"passwordError":  data.FormErrors["password"],
		"birthDateError": data.FormErrors["birthDate"],
		"errorMsg":       data.ErrorMsg,
	})
}

// RenderCheckEmailPage is the check-your-inbox prompt after registration and
// after a resend, which always reports success.
func RenderCheckEmailPage(ctx *fiber.Ctx, email string) error {
	return renderPage(ctx, fiber.StatusOK, "verify-email", fiber.Map{
		"email": email,
	})
}

func RenderActivationSuccessPage(ctx *fiber.Ctx, email string) error {
	return renderPage(ctx, fiber.StatusOK, "verify-email-result", fiber.Map{
		"success": true,
		"email":   email,
	})
}

func RenderActivationFailurePage(ctx *fiber.Ctx) error {
	return renderPage(ctx, fiber.StatusOK, "verify-email-result", fiber.Map{
		"success": false,
	})
}

func RenderProfilePage(ctx *fiber.Ctx, data ProfilePageData) error {
	return renderPage(ctx, fiber.StatusOK, "profile", fiber.Map{
		"username":  data.Username,
		"email":     data.Email,
		"firstName": data.FirstName,
		"lastName":  data.LastName,
		"bio":       data.Bio,
		"location":  data.Location,
		"gender":    data.Gender,
		"birthDate": data.BirthDate,
		"picture":   data.Picture,
		"errorMsg":  data.ErrorMsg,
		"saved":     data.Saved,
	})
}

func RenderForgotPasswordPage(ctx *fiber.Ctx, data ForgotPasswordPageData) error {
	return renderPage(ctx, fiber.StatusOK, "forgot-password", fiber.Map{
		"email":     data.Email,
		"emailSent": data.EmailSent,
		"errorMsg":  data.ErrorMsg,
	})
}

func RenderSetNewPasswordPage(ctx *fiber.Ctx, errorMsg string) error {
	return renderPage(ctx, fiber.StatusOK, "set-new-password", fiber.Map{
		"errorMsg": errorMsg,
	})
}

func RenderPasswordUpdatedPage(ctx *fiber.Ctx) error {
	return renderPage(ctx, fiber.StatusOK, "password-updated", nil)
}

func RenderChangePasswordPage(ctx *fiber.Ctx, errorMsg string) error {
	return renderPage(ctx, fiber.StatusOK, "change-password", fiber.Map{
		"errorMsg": errorMsg,
	})
}
