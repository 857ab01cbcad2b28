package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/its27-backend/pkg/config"
	"github.com/angelmondragon/its27-backend/pkg/db/models"
	pkgerrors "github.com/angelmondragon/its27-backend/pkg/errors"
	"github.com/angelmondragon/its27-backend/pkg/security"
)

// RegisterService creates admin accounts. It is only mounted outside
// production.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) (*AdminDTO, error)
}

type adminWriter interface {
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	Create(ctx context.Context, user *models.AdminUser) error
}

type registerService struct {
	admins      adminWriter
	passwordCfg config.PasswordConfig
}

func NewRegisterService(admins adminWriter, passwordCfg config.PasswordConfig) (RegisterService, error) {
	if admins == nil {
		return nil, fmt.Errorf("admin repository is required")
	}
	return &registerService{admins: admins, passwordCfg: passwordCfg}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) (*AdminDTO, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, pkgerrors.Validation("invalid account", pkgerrors.FieldErrors{"email": "is required"})
	}
	if err := security.ValidatePassword(req.Password); err != nil {
		return nil, pkgerrors.Validation("invalid account", pkgerrors.FieldErrors{"password": err.Error()})
	}

	if _, err := s.admins.FindByEmail(ctx, email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if !errors.Is(err, ErrAdminNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup admin")
	}

	hash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user := &models.AdminUser{Email: email, PasswordHash: hash}
	if err := s.admins.Create(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create admin")
	}
	return NewAdminDTO(user), nil
}
