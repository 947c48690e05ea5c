package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/classpad/answerboard/pkg/logger"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// RecordAudit logs an entry best-effort: audit failures are logged, never
// fatal to the operation that produced them.
func RecordAudit(svc *AuditService, ctx context.Context, entry AuditEntry) {
	if svc == nil {
		return
	}
	if err := svc.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("audit entry dropped",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}
