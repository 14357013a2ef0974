package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/voltpath/labstock-backend/pkg/db/models"
	"github.com/voltpath/labstock-backend/pkg/enums"
	pkgerrors "github.com/voltpath/labstock-backend/pkg/errors"
	"github.com/voltpath/labstock-backend/pkg/pagination"
)

// Service manages user accounts. Role changes and deactivation are admin
// operations; profile updates are self-service.
type Service interface {
	Get(ctx context.Context, id uuid.UUID) (*UserDTO, error)
	List(ctx context.Context, actorRole enums.Role, filters ListFilters, params pagination.PageParams) (*UserList, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error)
	SetRole(ctx context.Context, actorRole enums.Role, userID uuid.UUID, role enums.Role) (*UserDTO, error)
	SetActive(ctx context.Context, actorRole enums.Role, userID uuid.UUID, active bool) (*UserDTO, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a user service.
func NewService(repo Repository, now func() time.Time) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if now == nil {
		now = time.Now
	}
	return &service{repo: repo, now: now}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return NewUserDTO(user), nil
}

func (s *service) List(ctx context.Context, actorRole enums.Role, filters ListFilters, params pagination.PageParams) (*UserList, error) {
	if actorRole != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may list users")
	}

	items, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}

	dtos := make([]UserDTO, 0, len(items))
	for i := range items {
		dtos = append(dtos, *NewUserDTO(&items[i]))
	}
	return &UserList{
		Items:      dtos,
		Pagination: pagination.NewPageMeta(params, len(dtos), total),
	}, nil
}

func (s *service) UpdateProfile(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*UserDTO, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		user.Name = name
	}
	if input.Department != nil {
		user.Department = input.Department
	}
	if input.EmailOptOut != nil {
		user.EmailOptOut = *input.EmailOptOut
	}

	return s.save(ctx, user)
}

func (s *service) SetRole(ctx context.Context, actorRole enums.Role, userID uuid.UUID, role enums.Role) (*UserDTO, error) {
	if actorRole != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change roles")
	}
	if !role.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid role %q", role))
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Role = role
	return s.save(ctx, user)
}

func (s *service) SetActive(ctx context.Context, actorRole enums.Role, userID uuid.UUID, active bool) (*UserDTO, error) {
	if actorRole != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may change account status")
	}

	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.IsActive = active
	return s.save(ctx, user)
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) save(ctx context.Context, user *models.User) (*UserDTO, error) {
	saved, err := s.repo.Save(ctx, user)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return NewUserDTO(saved), nil
}
