package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/bnema/scribe/internal/domain"
	"github.com/bnema/scribe/internal/port"
)

var _ port.ContentRevisions = (*ContentRepository)(nil)

// ContentRepository stores the revisions of each content lineage.
type ContentRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewContentRepository(store *Store) *ContentRepository {
	return &ContentRepository{db: store.db, now: time.Now}
}

// AddRevision appends a new revision to the lineage and returns its number.
func (r *ContentRepository) AddRevision(ctx context.Context, contentID string) (int, error) {
	var rev int
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO content_revisions (content_id, revision, updated_at)
		 SELECT ?, COALESCE(MAX(revision), 0) + 1, ?
		 FROM content_revisions WHERE content_id = ?
		 RETURNING revision`,
		contentID, formatTime(r.now()), contentID,
	).Scan(&rev)
	if err != nil {
		return 0, fmt.Errorf("add revision for %s: %w", contentID, err)
	}
	return rev, nil
}

func (r *ContentRepository) ListRevisions(ctx context.Context, contentID string) ([]domain.ContentRevision, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT content_id, revision, transcript, updated_at
		 FROM content_revisions WHERE content_id = ? ORDER BY revision ASC`, contentID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var revs []domain.ContentRevision
	for rows.Next() {
		var (
			rev        domain.ContentRevision
			transcript sql.NullString
			updatedAt  string
		)
		if err := rows.Scan(&rev.ContentID, &rev.Revision, &transcript, &updatedAt); err != nil {
			return nil, err
		}
		if transcript.Valid {
			rev.Transcript = &transcript.String
		}
		if rev.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		revs = append(revs, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(revs) == 0 {
		return nil, domain.ErrNotFound
	}
	return revs, nil
}

// WriteTranscript sets the transcript on every revision of the lineage.
func (r *ContentRepository) WriteTranscript(ctx context.Context, contentID, text string) (int, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE content_revisions SET transcript = ?, updated_at = ? WHERE content_id = ?`,
		text, formatTime(r.now()), contentID)
	if err != nil {
		return 0, fmt.Errorf("write transcript for %s: %w", contentID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, domain.ErrNotFound
	}
	return int(n), nil
}
