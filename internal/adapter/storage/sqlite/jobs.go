package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

var _ port.JobStore = (*JobRepository)(nil)

const jobColumns = `job_id, content_id, status, transcript_text, confidence,
	audio_duration_seconds, error_message, owner_id, created_at, updated_at`

type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(store *Store) *JobRepository {
	return &JobRepository{db: store.db}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.TranscriptionJob) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO transcription_jobs (`+jobColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		job.JobID, job.ContentID, string(job.Status),
		nullString(job.TranscriptText), nullFloat(job.Confidence),
		nullFloat(job.AudioDurationSeconds), nullString(job.ErrorMessage),
		job.OwnerID, formatTime(job.CreatedAt), formatTime(job.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert job %s: %w", job.JobID, err)
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, jobID string) (*domain.TranscriptionJob, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs WHERE job_id = ?`, jobID)
	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return job, nil
}

func (r *JobRepository) ListByContent(ctx context.Context, contentID string) ([]*domain.TranscriptionJob, error) {
	return r.list(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE content_id = ? ORDER BY created_at DESC`, contentID)
}

func (r *JobRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.TranscriptionJob, error) {
	return r.list(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
}

func (r *JobRepository) ListStale(ctx context.Context, before time.Time) ([]*domain.TranscriptionJob, error) {
	return r.list(ctx,
		`SELECT `+jobColumns+` FROM transcription_jobs
		 WHERE status NOT IN ('completed', 'error') AND updated_at < ?
		 ORDER BY updated_at ASC`, formatTime(before))
}

func (r *JobRepository) Finalize(ctx context.Context, job *domain.TranscriptionJob) (bool, error) {
	if !job.Status.IsTerminal() {
		return false, fmt.Errorf("finalize job %s with status %q: %w", job.JobID, job.Status, domain.ErrInvalidInput)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE transcription_jobs
		 SET status = ?, transcript_text = ?, confidence = ?, audio_duration_seconds = ?,
		     error_message = ?, updated_at = ?
		 WHERE job_id = ? AND status NOT IN ('completed', 'error')`,
		string(job.Status), nullString(job.TranscriptText), nullFloat(job.Confidence),
		nullFloat(job.AudioDurationSeconds), nullString(job.ErrorMessage),
		formatTime(job.UpdatedAt), job.JobID,
	)
	if err != nil {
		return false, fmt.Errorf("finalize job %s: %w", job.JobID, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("finalize job %s: %w", job.JobID, err)
	}
	if n == 1 {
		return true, nil
	}

	// Nothing changed: either the job is already terminal or it never existed.
	var exists int
	err = r.db.QueryRowContext(ctx,
		`SELECT 1 FROM transcription_jobs WHERE job_id = ?`, job.JobID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return false, domain.ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("finalize job %s: %w", job.JobID, err)
	}
	return false, nil
}

func (r *JobRepository) DeleteTerminalBefore(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM transcription_jobs
		 WHERE status IN ('completed', 'error') AND updated_at < ?`, formatTime(before))
	if err != nil {
		return 0, fmt.Errorf("delete terminal jobs: %w", err)
	}
	return res.RowsAffected()
}

func (r *JobRepository) list(ctx context.Context, query string, args ...any) ([]*domain.TranscriptionJob, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	jobs := make([]*domain.TranscriptionJob, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (*domain.TranscriptionJob, error) {
	var (
		job                  domain.TranscriptionJob
		status               string
		text, errMsg         sql.NullString
		confidence, duration sql.NullFloat64
		createdAt, updatedAt string
	)
	if err := s.Scan(&job.JobID, &job.ContentID, &status, &text, &confidence,
		&duration, &errMsg, &job.OwnerID, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if job.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if job.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}

	job.Status = domain.JobStatus(status)
	if text.Valid {
		job.TranscriptText = &text.String
	}
	if errMsg.Valid {
		job.ErrorMessage = &errMsg.String
	}
	if confidence.Valid {
		job.Confidence = &confidence.Float64
	}
	if duration.Valid {
		job.AudioDurationSeconds = &duration.Float64
	}
	return &job, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
