package users

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/quangnv/accountd/internal/tokens"
	"github.com/quangnv/accountd/model"
	"github.com/quangnv/accountd/params"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidToken covers every activation/reset link failure: bad reference,
// unknown account, expired or forged token. Callers surface one generic
// message for all of them.
var ErrInvalidToken = errors.New("invalid or expired token")

// dummyHash burns a bcrypt comparison when no account matches, so a miss is
// not distinguishable from a wrong password by timing.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("-"), bcrypt.DefaultCost)

type RegisterOptions struct {
	Email     string
	Username  string // generated when empty
	Password  string
	FirstName string
	LastName  string
	BirthDate *time.Time
}

type ProfileOptions struct {
	FirstName string
	LastName  string
	Bio       string
	Location  string
	Gender    string
	BirthDate *time.Time
	Picture   string
}

type UserService struct {
	userRepo UserRepository
	issuer   *tokens.Issuer
}

func NewUserService(userRepo UserRepository, issuer *tokens.Issuer) *UserService {
	return &UserService{
		userRepo: userRepo,
		issuer:   issuer,
	}
}

func (s *UserService) GetUserByID(ctx context.Context, userID uint) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// GetUserByIdentifier resolves a login identifier to a single account. When
// duplicate records match, the smallest id wins.
func (s *UserService) GetUserByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	found, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, ErrUserNotFound
	}
	return found[0], nil
}

// ValidatePassword enforces the password policy of the hashing primitive:
// a floor for strength and the bcrypt input ceiling.
func ValidatePassword(password string) error {
	if len(password) < params.MinPasswordLength || len(password) > params.MaxPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func validateEmail(email string) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.New("invalid email address")
	}
	return nil
}

// mapDuplicateKey attributes a MySQL 1062 to the violated unique index.
func mapDuplicateKey(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		switch {
		case strings.Contains(mysqlErr.Message, model.IdxUserUsername):
			return ErrUsernameTaken
		case strings.Contains(mysqlErr.Message, model.IdxUserEmail):
			return ErrEmailRegistered
		}
	}
	return err
}

// Register creates an inactive account and its profile as one atomic insert.
// Uniqueness is enforced by the store's unique indexes, not a pre-check; when
// the username was generated, a collision is retried with a fresh one.
func (s *UserService) Register(ctx context.Context, opts RegisterOptions) (*model.User, error) {
	if err := validateEmail(opts.Email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(opts.Password); err != nil {
		return nil, err
	}
	generated := opts.Username == ""
	if !generated {
		if len(opts.Username) > params.MaxUsernameLength {
			return nil, validationError(CodeInvalidUsername, "Username must be at most 15 characters.")
		}
		if verr := ValidateUsername(opts.Username); verr != nil {
			return nil, verr
		}
	}
	if opts.BirthDate != nil {
		if _, verr := ValidateAge(*opts.BirthDate, time.Now()); verr != nil {
			return nil, verr
		}
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		username := opts.Username
		if generated {
			username = GenerateUsername()
		}
		user := model.User{
			Username: strings.ToLower(username),
			Email:    strings.ToLower(opts.Email),
			Password: string(passwordHash),
			Active:   false,
			Profile: model.Profile{
				FirstName: opts.FirstName,
				LastName:  opts.LastName,
				BirthDate: opts.BirthDate,
			},
		}
		err := mapDuplicateKey(s.userRepo.Create(ctx, &user))
		if generated && errors.Is(err, ErrUsernameTaken) && attempt < params.CreateUserMaxAttempts {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &user, nil
	}
}

// Authenticate resolves an identifier and password to exactly one account or
// a typed failure. The inactive check runs only after the password matched,
// so callers can offer the resend-confirmation path without leaking accounts.
func (s *UserService) Authenticate(ctx context.Context, identifier string, password string) (*model.User, error) {
	user, err := s.GetUserByIdentifier(ctx, identifier)
	if errors.Is(err, ErrUserNotFound) {
		bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrWrongPassword
	}
	if !user.Active {
		return nil, ErrUserInactive
	}
	return user, nil
}

// RecordLogin stamps last_login after a successful authentication. The stamp
// also rotates the input of outstanding reset tokens, expiring them.
func (s *UserService) RecordLogin(ctx context.Context, user *model.User) error {
	now := time.Now()
	if _, err := s.userRepo.Updates(ctx, user.ID, map[string]interface{}{"last_login": now}); err != nil {
		return err
	}
	user.LastLogin = &now
	return nil
}

// ActivationToken mints a fresh email-verification token for the account.
func (s *UserService) ActivationToken(user *model.User) string {
	return s.issuer.Generate(user, tokens.PurposeActivate)
}

// ResetToken mints a fresh password-reset token for the account.
func (s *UserService) ResetToken(user *model.User) string {
	return s.issuer.Generate(user, tokens.PurposeReset)
}

// Activate decodes the opaque account reference, verifies the token against
// the account's pre-activation state and persists the active flag. Activating
// an already-active account succeeds without touching anything, so a repeated
// click on the same link never errors.
func (s *UserService) Activate(ctx context.Context, uid string, token string) (*model.User, error) {
	userID, err := tokens.DecodeUID(uid)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if user.Active {
		return user, nil
	}
	if !s.issuer.Verify(user, tokens.PurposeActivate, token) {
		return nil, ErrInvalidToken
	}
	if _, err := s.userRepo.Updates(ctx, user.ID, map[string]interface{}{"active": true}); err != nil {
		return nil, err
	}
	user.Active = true
	return user, nil
}

// GetUserForReset loads the account addressed by a reset link and verifies
// its token. Every failure collapses to ErrInvalidToken.
func (s *UserService) GetUserForReset(ctx context.Context, uid string, token string) (*model.User, error) {
	userID, err := tokens.DecodeUID(uid)
	if err != nil {
		return nil, ErrInvalidToken
	}
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return nil, ErrInvalidToken
	}
	if !s.issuer.Verify(user, tokens.PurposeReset, token) {
		return nil, ErrInvalidToken
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uint, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	affected, err := s.userRepo.Updates(ctx, userID, map[string]interface{}{"password": string(passwordHash)})
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateProfile mutates the holder-editable profile fields. The birth date
// keeps the registration age rule.
func (s *UserService) UpdateProfile(ctx context.Context, user *model.User, opts ProfileOptions) error {
	if opts.BirthDate != nil {
		if _, verr := ValidateAge(*opts.BirthDate, time.Now()); verr != nil {
			return verr
		}
	}
	switch opts.Gender {
	case "", model.GenderMale, model.GenderFemale, model.GenderOther:
	default:
		return errors.New("invalid gender")
	}
	profile := user.Profile
	profile.FirstName = opts.FirstName
	profile.LastName = opts.LastName
	profile.Bio = opts.Bio
	profile.Location = opts.Location
	profile.Gender = opts.Gender
	profile.BirthDate = opts.BirthDate
	profile.Picture = opts.Picture
	if err := s.userRepo.UpdateProfile(ctx, &profile); err != nil {
		return err
	}
	user.Profile = profile
	return nil
}
