package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/crestwood-digital/school-admin-api/internal/models"
	appErrors "github.com/crestwood-digital/school-admin-api/pkg/errors"
)

type noticeRepository interface {
	Create(ctx context.Context, notice *models.Notice) error
	FindByID(ctx context.Context, id int64) (*models.Notice, error)
	ListPublished(ctx context.Context, role models.UserRole) ([]models.Notice, error)
	Update(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id int64) error
}

// NoticeRequest carries an announcement. TargetRole "all" addresses
// every role group.
type NoticeRequest struct {
	Title       string `json:"title" validate:"required"`
	Content     string `json:"content" validate:"required"`
	TargetRole  string `json:"target_role"`
	IsPublished *bool  `json:"is_published"`
}

// NoticeService manages announcements.
type NoticeService struct {
	repo      noticeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNoticeService constructs a NoticeService instance.
func NewNoticeService(repo noticeRepository, validate *validator.Validate, logger *zap.Logger) *NoticeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &NoticeService{repo: repo, validator: validate, logger: logger}
}

func normalizeTargetRole(raw string) (string, error) {
	if raw == "" || raw == "all" {
		return "all", nil
	}
	if _, ok := models.ParseRole(raw); !ok {
		return "", appErrors.Clone(appErrors.ErrValidation, "target_role must be all or a known role")
	}
	return raw, nil
}

// Create publishes an announcement authored by the acting user.
func (s *NoticeService) Create(ctx context.Context, createdBy int64, req NoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and content are required")
	}

	target, err := normalizeTargetRole(req.TargetRole)
	if err != nil {
		return nil, err
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}

	now := time.Now().UTC()
	notice := &models.Notice{
		Title:       req.Title,
		Content:     req.Content,
		CreatedBy:   createdBy,
		TargetRole:  target,
		IsPublished: published,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notice")
	}
	return notice, nil
}

// Get returns one notice by id.
func (s *NoticeService) Get(ctx context.Context, id int64) (*models.Notice, error) {
	notice, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notice not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notice")
	}
	return notice, nil
}

// ListForRole returns the published notices visible to a role: those
// targeted at it plus those addressed to everyone.
func (s *NoticeService) ListForRole(ctx context.Context, role models.UserRole) ([]models.Notice, error) {
	notices, err := s.repo.ListPublished(ctx, role)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notices")
	}
	return notices, nil
}

// Update replaces a notice's content and targeting.
func (s *NoticeService) Update(ctx context.Context, id int64, req NoticeRequest) (*models.Notice, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "title and content are required")
	}

	notice, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	target, err := normalizeTargetRole(req.TargetRole)
	if err != nil {
		return nil, err
	}

	notice.Title = req.Title
	notice.Content = req.Content
	notice.TargetRole = target
	if req.IsPublished != nil {
		notice.IsPublished = *req.IsPublished
	}
	notice.UpdatedAt = time.Now().UTC()

	if err := s.repo.Update(ctx, notice); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notice")
	}
	return notice, nil
}

// Delete removes a notice.
func (s *NoticeService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notice")
	}
	return nil
}
