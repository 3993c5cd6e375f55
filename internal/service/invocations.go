package service

import (
	"context"
	"log"

	"github.com/tracelens/backend/internal/db"
	"github.com/tracelens/backend/internal/model"
)

// InvocationLog persists one row per model call. Recording failures are
// logged and swallowed so observability never breaks an analysis.
type InvocationLog struct {
	repo *db.Postgres
}

func NewInvocationLog(repo *db.Postgres) *InvocationLog {
	return &InvocationLog{repo: repo}
}

func (l *InvocationLog) EnsureSchema(ctx context.Context) error {
	return l.repo.EnsureInvocationSchema(ctx)
}

func (l *InvocationLog) RecordInvocation(ctx context.Context, rec model.ModelInvocation) {
	if err := l.repo.InsertModelInvocation(ctx, rec); err != nil {
		log.Printf("Failed to record model invocation for issue %s: %v", rec.IssueID, err)
	}
}
