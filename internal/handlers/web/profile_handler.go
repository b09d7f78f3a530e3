package web

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/quangnv/accountd/internal/middlewares/sessions"
	"github.com/quangnv/accountd/internal/render"
	"github.com/quangnv/accountd/internal/users"
	"github.com/quangnv/accountd/model"
)

type ProfileHandler struct {
	userService UserService
}

func NewProfileHandler(userService UserService) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
	}
}

func profilePageData(user *model.User) render.ProfilePageData {
	data := render.ProfilePageData{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.Profile.FirstName,
		LastName:  user.Profile.LastName,
		Bio:       user.Profile.Bio,
		Location:  user.Profile.Location,
		Gender:    user.Profile.Gender,
		Picture:   user.Profile.Picture,
	}
	if user.Profile.BirthDate != nil {
		data.BirthDate = user.Profile.BirthDate.Format(birthDateLayout)
	}
	return data
}

func (h *ProfileHandler) GetProfile(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if !session.IsAuthenticated() {
		return redirect(ctx, "/login")
	}

	user, err := h.userService.GetUserByID(ctx.Context(), session.UserID)
	if err != nil {
		return forceLogout(ctx, "session_expired")
	}
	return render.RenderProfilePage(ctx, profilePageData(user))
}

func (h *ProfileHandler) PostProfile(ctx *fiber.Ctx) error {
	session := sessions.Get(ctx)
	if !session.IsAuthenticated() {
		return redirect(ctx, "/login")
	}

	user, err := h.userService.GetUserByID(ctx.Context(), session.UserID)
	if err != nil {
		return forceLogout(ctx, "session_expired")
	}

	var (
		firstName = strings.TrimSpace(ctx.FormValue("firstName"))
		lastName  = strings.TrimSpace(ctx.FormValue("lastName"))
		bio       = strings.TrimSpace(ctx.FormValue("bio"))
		location  = strings.TrimSpace(ctx.FormValue("location"))
		gender    = ctx.FormValue("gender")
		birthDate = strings.TrimSpace(ctx.FormValue("birthDate"))
		picture   = strings.TrimSpace(ctx.FormValue("picture"))
	)

	pageData := render.ProfilePageData{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: firstName,
		LastName:  lastName,
		Bio:       bio,
		Location:  location,
		Gender:    gender,
		BirthDate: birthDate,
		Picture:   picture,
	}

	parsedBirthDate, err := parseBirthDate(birthDate)
	if err != nil {
		pageData.ErrorMsg = err.Error()
		return render.RenderProfilePage(ctx, pageData)
	}

	opts := users.ProfileOptions{
		FirstName: firstName,
		LastName:  lastName,
		Bio:       bio,
		Location:  location,
		Gender:    gender,
		BirthDate: parsedBirthDate,
		Picture:   picture,
	}
	if err := h.userService.UpdateProfile(ctx.Context(), user, opts); err != nil {
		var verr *users.ValidationError
		if errors.As(err, &verr) {
			pageData.ErrorMsg = verr.Message
			return render.RenderProfilePage(ctx, pageData)
		}
		return err
	}

	pageData = profilePageData(user)
	pageData.Saved = true
	return render.RenderProfilePage(ctx, pageData)
}
