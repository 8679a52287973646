package contact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/db/models"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
)

// MessageDTO is one contact-form submission as the admin console lists it.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Subject    *string   `json:"subject,omitempty"`
	Message    string    `json:"message"`
	IsRead     bool      `json:"isRead"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// ListDTO is one page of messages with pagination metadata.
type ListDTO struct {
	Messages   []MessageDTO    `json:"messages"`
	Pagination pagination.Page `json:"pagination"`
}

// SubmitRequest is the public contact form.
type SubmitRequest struct {
	Name    string  `json:"name" validate:"required,min=2,max=120"`
	Email   string  `json:"email" validate:"required,email"`
	Phone   *string `json:"phone" validate:"omitempty,max=30"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message string  `json:"message" validate:"required,min=5,max=5000"`
}

// Repository encapsulates contact message persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a contact repository bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a message.
func (r *Repository) Create(ctx context.Context, message *models.ContactMessage) (*models.ContactMessage, error) {
	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		return nil, err
	}
	return message, nil
}

// FindByID loads one message.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	var row models.ContactMessage
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// List returns one page of messages, newest first, unread first.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.ContactMessage, int64, error) {
	params = pagination.Normalize(params)

	query := r.db.WithContext(ctx).Model(&models.ContactMessage{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.ContactMessage
	err := query.
		Order("is_read ASC, created_at DESC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// MarkRead flags a message as handled.
func (r *Repository) MarkRead(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.ContactMessage{}).
		Where("id = ?", id).
		Update("is_read", true).Error
}

// Delete removes a message.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ContactMessage{}, "id = ?", id).Error
}

// Service exposes the public contact form and the admin inbox.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*MessageDTO, error)
	List(ctx context.Context, params pagination.Params) (*ListDTO, error)
	MarkRead(ctx context.Context, id uuid.UUID) (*MessageDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type contactRepository interface {
	Create(ctx context.Context, message *models.ContactMessage) (*models.ContactMessage, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error)
	List(ctx context.Context, params pagination.Params) ([]models.ContactMessage, int64, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ServiceParams groups dependencies for the contact service.
type ServiceParams struct {
	Repo contactRepository
}

type service struct {
	repo contactRepository
}

// NewService builds a contact service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contact repository is required")
	}
	return &service{repo: params.Repo}, nil
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*MessageDTO, error) {
	message := &models.ContactMessage{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   req.Phone,
		Subject: req.Subject,
		Message: strings.TrimSpace(req.Message),
	}
	if message.Name == "" || message.Email == "" || message.Message == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name, email and message are required")
	}

	created, err := s.repo.Create(ctx, message)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store contact message")
	}
	dto := toDTO(created)
	return &dto, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) (*ListDTO, error) {
	params = pagination.Normalize(params)
	rows, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contact messages")
	}

	out := make([]MessageDTO, 0, len(rows))
	for i := range rows {
		out = append(out, toDTO(&rows[i]))
	}
	return &ListDTO{Messages: out, Pagination: pagination.NewPage(params, total)}, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) (*MessageDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.MarkRead(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark message read")
	}
	row, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(row)
	return &dto, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.load(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete contact message")
	}
	return nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.ContactMessage, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message id is required")
	}
	row, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "message not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load contact message")
	}
	return row, nil
}

func toDTO(row *models.ContactMessage) MessageDTO {
	return MessageDTO{
		ID:         row.ID,
		Name:       row.Name,
		Email:      row.Email,
		Phone:      row.Phone,
		Subject:    row.Subject,
		Message:    row.Message,
		IsRead:     row.IsRead,
		ReceivedAt: row.CreatedAt,
	}
}
