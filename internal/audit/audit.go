package audit

import (
	"context"
	"log/slog"
	"sync"

	"github.com/quangnv/accountd/model"
)

var auditRepo AuditEventRepository
var initOnce sync.Once

func Initialize(repo AuditEventRepository) {
	initOnce.Do(func() {
		auditRepo = repo
	})
}

const (
	EventTypeRegister       = "register"
	EventTypeActivation     = "activation"
	EventTypeLoginSuccess   = "login_success"
	EventTypeLoginFailure   = "login_failure"
	EventTypeLogout         = "logout"
	EventTypeResendConfirm  = "resend_confirmation"
	EventTypePasswordReset  = "password_reset"
	EventTypePasswordChange = "password_change"
)

type Record struct {
	UserID     uint
	Identifier string
	IP         string
	UserAgent  string
	Detail     string
}

// Log persists an audit event. Best effort: a failed write is logged and
// never fails the request that produced it.
func Log(ctx context.Context, eventType string, rec Record) {
	if auditRepo == nil {
		return
	}
	event := model.AuditEvent{
		Type:       eventType,
		UserID:     rec.UserID,
		Identifier: rec.Identifier,
		IP:         rec.IP,
		UserAgent:  rec.UserAgent,
		Detail:     rec.Detail,
	}
	if err := auditRepo.Create(ctx, &event); err != nil {
		slog.Warn("Failed to write audit event", "type", eventType, "error", err)
	}
}
