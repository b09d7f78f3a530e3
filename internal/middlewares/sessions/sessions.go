package sessions

import (
	"crypto/rand"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/session"
)

const (
	sessionContextKey = "session"
	sessionDataKey    = "data"
)

func init() {
	gob.Register(SessionData{})
}

type SessionData struct {
	IP                  string    // client ip address
	UserID              uint      // logged-in user id, zero when anonymous
	LoginTime           time.Time // time of session establishment
	LastSeen            time.Time // last request time
	PendingVerification string    // identifier of an inactive-account login attempt
}

func (s *SessionData) IsAuthenticated() bool {
	return s.UserID != 0
}

type Session struct {
	*session.Session
	SessionData
}

func (s *Session) Save(data ...SessionData) {
	if len(data) > 0 {
		s.SessionData = data[0]
	}
	s.Set(sessionDataKey, s.SessionData)
}

// Establish resets the underlying session (new id, fresh cookie) and binds it
// to the user. Resetting on login prevents session fixation.
func (s *Session) Establish(ctx *fiber.Ctx, userID uint) error {
	if err := s.Session.Reset(); err != nil {
		return err
	}
	s.SessionData = SessionData{
		IP:        ctx.IP(),
		UserID:    userID,
		LoginTime: time.Now(),
	}
	s.Set(sessionDataKey, s.SessionData)
	return nil
}

// PopPendingVerification returns and clears the pending-verification marker.
func (s *Session) PopPendingVerification() string {
	marker := s.PendingVerification
	if marker != "" {
		s.PendingVerification = ""
		s.Set(sessionDataKey, s.SessionData)
	}
	return marker
}

// SetPendingVerification records the identifier of an inactive-account login
// attempt. It lives until resent, consumed by login, or the session expires.
func (s *Session) SetPendingVerification(identifier string) {
	s.PendingVerification = identifier
	s.Set(sessionDataKey, s.SessionData)
}

func (s *Session) Destroy() error {
	s.SessionData = SessionData{}
	return s.Session.Destroy()
}

func newSession(sess *session.Session) *Session {
	data, _ := sess.Get(sessionDataKey).(SessionData)
	return &Session{
		Session:     sess,
		SessionData: data,
	}
}

func generateSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		slog.Error("Could not generate session id", "error", err)
		return ""
	}
	return hex.EncodeToString(b)
}

func Get(ctx *fiber.Ctx) *Session {
	return ctx.Locals(sessionContextKey).(*Session)
}

// Destroy drops the current session. Destroying an already-destroyed session
// is a no-op.
func Destroy(ctx *fiber.Ctx) error {
	session := ctx.Locals(sessionContextKey).(*Session)
	return session.Destroy()
}

type Config struct {
	Storage        fiber.Storage
	SessionMaxAge  time.Duration
	CookieSecure   bool
	CookieHttpOnly bool
	CookieName     string
}

func applyDefaults(config Config) Config {
	if config.SessionMaxAge <= 0 {
		config.SessionMaxAge = 24 * time.Hour
	}
	if config.CookieName == "" {
		config.CookieName = "sid"
	}
	return config
}

func New(config Config) fiber.Handler {
	config = applyDefaults(config)
	store := session.New(session.Config{
		Storage:        config.Storage,
		Expiration:     config.SessionMaxAge,
		CookieSecure:   config.CookieSecure,
		CookieHTTPOnly: config.CookieHttpOnly,
		CookieSameSite: "Lax",
		KeyLookup:      fmt.Sprintf("cookie:%s", config.CookieName),
		KeyGenerator:   generateSessionID,
	})

	return func(ctx *fiber.Ctx) error {
		sess, err := store.Get(ctx)
		if err != nil {
			return err
		}

		session := newSession(sess)
		ctx.Locals(sessionContextKey, session)
		if err := ctx.Next(); err != nil {
			return err
		}

		if len(session.Keys()) > 0 {
			if data := session.SessionData; data != (SessionData{}) {
				data.LastSeen = time.Now()
				sess.Set(sessionDataKey, data)
			}
			return sess.Save()
		}
		return nil
	}
}
