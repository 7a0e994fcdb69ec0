package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Repository interface {
	ListWeekly(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyEntry, error)
	UpsertWeekly(ctx context.Context, entries []*WeeklyEntry) error

	CreateLeave(ctx context.Context, l *Leave) error
	ListLeaveByDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Leave, error)
	ListLeaveFrom(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]*Leave, error)
	GetLeave(ctx context.Context, id uuid.UUID) (*Leave, error)
	DeleteLeave(ctx context.Context, id uuid.UUID) error
}
