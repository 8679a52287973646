package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/trendora/trendora-backend/pkg/config"
	"github.com/trendora/trendora-backend/pkg/db"
	"github.com/trendora/trendora-backend/pkg/db/models"
	"github.com/trendora/trendora-backend/pkg/enums"
	pkgerrors "github.com/trendora/trendora-backend/pkg/errors"
	"github.com/trendora/trendora-backend/pkg/pagination"
	"github.com/trendora/trendora-backend/pkg/security"
)

// Service covers the admin console's account management operations.
type Service interface {
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserListDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	Create(ctx context.Context, req AdminCreateUserRequest) (*AdminCreateUserResponse, error)
	Update(ctx context.Context, id uuid.UUID, req AdminUpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, actorID, id uuid.UUID) error
}

type userRepository interface {
	Create(ctx context.Context, dto CreateUserDTO) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]any) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params pagination.Params, filters ListFilters) ([]models.User, int64, error)
}

// AdminCreateUserRequest is the console's new-account form.
type AdminCreateUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,min=2,max=120"`
	Password    string `json:"password" validate:"omitempty,min=8"`
	Phone       string `json:"phone" validate:"omitempty"`
	Role        string `json:"role" validate:"required,oneof=customer admin"`
}

// AdminCreateUserResponse returns the created account, plus the generated
// credential when the form omitted a password.
type AdminCreateUserResponse struct {
	User         UserDTO `json:"user"`
	TempPassword string  `json:"tempPassword,omitempty"`
}

// AdminUpdateUserRequest carries the editable account fields. Nil means
// leave unchanged.
type AdminUpdateUserRequest struct {
	DisplayName *string `json:"displayName" validate:"omitempty,min=2,max=120"`
	Phone       *string `json:"phone"`
	Role        *string `json:"role" validate:"omitempty,oneof=customer admin"`
	IsActive    *bool   `json:"isActive"`
}

// ServiceParams bundles the dependencies required to build the service.
type ServiceParams struct {
	Repo        userRepository
	PasswordCfg config.PasswordConfig
}

type service struct {
	repo        userRepository
	passwordCfg config.PasswordConfig
}

// NewService constructs the account management service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository is required")
	}
	return &service{repo: params.Repo, passwordCfg: params.PasswordCfg}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*UserListDTO, error) {
	rows, total, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}

	out := make([]UserDTO, 0, len(rows))
	for i := range rows {
		out = append(out, ToDTO(&rows[i]))
	}
	return &UserListDTO{
		Users:      out,
		Pagination: pagination.NewPage(params, total),
	}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToDTO(user)
	return &dto, nil
}

func (s *service) Create(ctx context.Context, req AdminCreateUserRequest) (*AdminCreateUserResponse, error) {
	role, err := enums.ParseUserRole(req.Role)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	password := req.Password
	tempPassword := ""
	if password == "" {
		tempPassword, err = security.GenerateTempPassword(12)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate password")
		}
		password = tempPassword
	}

	hash, err := security.HashPassword(password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	var phone *string
	if trimmed := strings.TrimSpace(req.Phone); trimmed != "" {
		phone = &trimmed
	}

	user, err := s.repo.Create(ctx, CreateUserDTO{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Phone:        phone,
		Role:         role,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	return &AdminCreateUserResponse{
		User:         ToDTO(user),
		TempPassword: tempPassword,
	}, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req AdminUpdateUserRequest) (*UserDTO, error) {
	if _, err := s.findUser(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.DisplayName != nil {
		updates["display_name"] = strings.TrimSpace(*req.DisplayName)
	}
	if req.Phone != nil {
		updates["phone"] = req.Phone
	}
	if req.Role != nil {
		role, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
		}
		updates["role"] = role
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update user")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, actorID, id uuid.UUID) error {
	if actorID == id {
		return pkgerrors.New(pkgerrors.CodeValidation, "cannot delete your own account")
	}
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	return nil
}

func (s *service) findUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id is required")
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}
