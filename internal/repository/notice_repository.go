package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crestwood-digital/school-admin-api/internal/models"
)

// NoticeRepository handles persistence for notices.
type NoticeRepository struct {
	db *sqlx.DB
}

// NewNoticeRepository creates a new repository instance.
func NewNoticeRepository(db *sqlx.DB) *NoticeRepository {
	return &NoticeRepository{db: db}
}

// Create persists a new notice.
func (r *NoticeRepository) Create(ctx context.Context, notice *models.Notice) error {
	now := time.Now().UTC()
	notice.CreatedAt = now
	notice.UpdatedAt = now
	const query = `INSERT INTO notices (title, content, created_by, target_role, is_published, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &notice.ID, query, notice.Title, notice.Content, notice.CreatedBy, notice.TargetRole, notice.IsPublished, notice.CreatedAt, notice.UpdatedAt); err != nil {
		return fmt.Errorf("create notice: %w", err)
	}
	return nil
}

// FindByID returns a notice by id.
func (r *NoticeRepository) FindByID(ctx context.Context, id int64) (*models.Notice, error) {
	const query = `SELECT id, title, content, created_by, target_role, is_published, created_at, updated_at FROM notices WHERE id = $1 LIMIT 1`
	var notice models.Notice
	if err := r.db.GetContext(ctx, &notice, query, id); err != nil {
		return nil, err
	}
	return &notice, nil
}

// ListPublished returns published notices visible to the given role,
// newest first. Notices targeted at "all" are always included.
func (r *NoticeRepository) ListPublished(ctx context.Context, role models.UserRole) ([]models.Notice, error) {
	const query = `SELECT id, title, content, created_by, target_role, is_published, created_at, updated_at FROM notices WHERE is_published = TRUE AND (target_role = 'all' OR target_role = $1) ORDER BY created_at DESC`
	var notices []models.Notice
	if err := r.db.SelectContext(ctx, &notices, query, string(role)); err != nil {
		return nil, fmt.Errorf("list notices: %w", err)
	}
	return notices, nil
}

// Update persists notice changes.
func (r *NoticeRepository) Update(ctx context.Context, notice *models.Notice) error {
	notice.UpdatedAt = time.Now().UTC()
	const query = `UPDATE notices SET title = :title, content = :content, target_role = :target_role, is_published = :is_published, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, notice); err != nil {
		return fmt.Errorf("update notice: %w", err)
	}
	return nil
}

// Delete removes a notice.
func (r *NoticeRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM notices WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete notice: %w", err)
	}
	return nil
}
