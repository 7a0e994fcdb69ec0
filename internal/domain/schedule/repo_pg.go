package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinichq/clinic/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if c := db.ConnFromContext(ctx); c != nil {
		return c
	}
	return r.pool
}

const weeklyCols = `id, doctor_id, weekday, is_available, start_min, end_min, break_start_min, break_end_min, created_at, updated_at`

func (r *repoPG) ListWeekly(ctx context.Context, doctorID uuid.UUID) ([]*WeeklyEntry, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+weeklyCols+` FROM weekly_schedule WHERE doctor_id = $1 ORDER BY weekday`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*WeeklyEntry
	for rows.Next() {
		var w WeeklyEntry
		err := rows.Scan(&w.ID, &w.DoctorID, &w.Weekday, &w.IsAvailable,
			&w.StartTime, &w.EndTime, &w.BreakStart, &w.BreakEnd, &w.CreatedAt, &w.UpdatedAt)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &w)
	}
	return entries, nil
}

func (r *repoPG) UpsertWeekly(ctx context.Context, entries []*WeeklyEntry) error {
	for _, w := range entries {
		if w.ID == uuid.Nil {
			w.ID = uuid.New()
		}
		_, err := r.conn(ctx).Exec(ctx, `
			INSERT INTO weekly_schedule (id, doctor_id, weekday, is_available, start_min, end_min, break_start_min, break_end_min)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (doctor_id, weekday) DO UPDATE SET
				is_available=EXCLUDED.is_available,
				start_min=EXCLUDED.start_min, end_min=EXCLUDED.end_min,
				break_start_min=EXCLUDED.break_start_min, break_end_min=EXCLUDED.break_end_min,
				updated_at=NOW()`,
			w.ID, w.DoctorID, w.Weekday, w.IsAvailable, w.StartTime, w.EndTime, w.BreakStart, w.BreakEnd,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

const leaveCols = `id, doctor_id, leave_date, leave_type, reason, created_at`

func (r *repoPG) CreateLeave(ctx context.Context, l *Leave) error {
	l.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO leave (id, doctor_id, leave_date, leave_type, reason)
		VALUES ($1,$2,$3,$4,$5)`,
		l.ID, l.DoctorID, l.Date, l.LeaveType, l.Reason,
	)
	return err
}

func (r *repoPG) ListLeaveByDate(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*Leave, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+leaveCols+` FROM leave WHERE doctor_id = $1 AND leave_date = $2`, doctorID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeave(rows)
}

func (r *repoPG) ListLeaveFrom(ctx context.Context, doctorID uuid.UUID, from time.Time) ([]*Leave, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+leaveCols+` FROM leave WHERE doctor_id = $1 AND leave_date >= $2 ORDER BY leave_date`,
		doctorID, from)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectLeave(rows)
}

func (r *repoPG) GetLeave(ctx context.Context, id uuid.UUID) (*Leave, error) {
	var l Leave
	err := r.conn(ctx).QueryRow(ctx,
		`SELECT `+leaveCols+` FROM leave WHERE id = $1`, id).
		Scan(&l.ID, &l.DoctorID, &l.Date, &l.LeaveType, &l.Reason, &l.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *repoPG) DeleteLeave(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM leave WHERE id = $1`, id)
	return err
}

func collectLeave(rows pgx.Rows) ([]*Leave, error) {
	var leaves []*Leave
	for rows.Next() {
		var l Leave
		if err := rows.Scan(&l.ID, &l.DoctorID, &l.Date, &l.LeaveType, &l.Reason, &l.CreatedAt); err != nil {
			return nil, err
		}
		leaves = append(leaves, &l)
	}
	return leaves, nil
}
