package mail

import (
	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/render"
)

func SendActivationLink(sender MailSender, toEmail string, activateURL string) error {
	params := fiber.Map{
		"activateURL": activateURL,
	}
	body, err := render.RenderHTML("mail/confirm-register", params)
	if err != nil {
		return err
	}
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Please confirm your email address",
		Body:    body,
		IsHTML:  true,
	})
}

func SendResetPasswordLink(sender MailSender, toEmail string, resetURL string) error {
	params := fiber.Map{
		"resetURL": resetURL,
	}
	body, err := render.RenderHTML("mail/reset-password", params)
	if err != nil {
		return err
	}
	return sender.Send(&Message{
		To:      []string{toEmail},
		Subject: "Reset your password",
		Body:    body,
		IsHTML:  true,
	})
}
