package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/shiftreport/internal/errs"
	"github.com/and161185/shiftreport/internal/form"
	"github.com/and161185/shiftreport/internal/model"
)

// Messages shown by the identity flows.
const (
	MsgNetwork        = "Ошибка сети. Не удалось связаться с сервером."
	msgAuthFailed     = "Ошибка сервера при аутентификации."
	msgRegisterFailed = "Произошла неизвестная ошибка."
	msgRegisterNet    = "Ошибка сети. Попробуйте еще раз."
	msgRenameFailed   = "Не удалось сменить имя."
	msgShortNetwork   = "Ошибка сети."
)

// uniqueViolation marks a backend uniqueness conflict on registration.
const uniqueViolation = "UNIQUE constraint failed"

// AuthService defines identity operations.
type AuthService interface {
	// Resolve looks up the user for a platform id. An empty id yields errs.ErrNoIdentity,
	// an unknown one errs.ErrNotFound; other failures come back as *UserError.
	Resolve(ctx context.Context, tgID string) (*model.User, error)
	// Register validates the name and creates the user.
	Register(ctx context.Context, tgID, name, username string) (*model.User, error)
	// Rename changes the user's name; changed is false when the trimmed name is unchanged.
	Rename(ctx context.Context, u model.User, newName string) (name string, changed bool, err error)
}

type AuthServiceImpl struct {
	api Backend
	log *zap.Logger
}

// NewAuthService constructs AuthService over the backend.
func NewAuthService(api Backend, log *zap.Logger) *AuthServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthServiceImpl{api: api, log: log}
}

// Resolve fetches the user by platform id.
func (s *AuthServiceImpl) Resolve(ctx context.Context, tgID string) (*model.User, error) {
	if tgID == "" {
		return nil, errs.ErrNoIdentity
	}
	res := s.api.GetUser(ctx, tgID)
	switch {
	case res.OK() && res.Data != nil:
		return res.Data, nil
	case res.OK():
		return nil, &UserError{Message: msgAuthFailed}
	case res.Err.Kind == errs.ErrNotFound:
		return nil, errs.ErrNotFound
	}
	s.log.Warn("resolve user failed", zap.String("tg_id", tgID), zap.Int("status", res.Err.Status), zap.String("error", res.Err.Message))
	return nil, failure(res.Err, msgAuthFailed, MsgNetwork)
}

// Register creates the user. A uniqueness conflict yields errs.ErrAlreadyRegistered
// so the caller resolves the identity again.
func (s *AuthServiceImpl) Register(ctx context.Context, tgID, name, username string) (*model.User, error) {
	if tgID == "" {
		return nil, errs.ErrNoIdentity
	}
	if err := form.ValidateName(name); err != nil {
		return nil, err
	}
	res := s.api.RegisterUser(ctx, tgID, name, username)
	if res.OK() && res.Data != nil {
		s.log.Info("registered", zap.String("tg_id", tgID))
		return res.Data, nil
	}
	if res.Err != nil && strings.Contains(res.Err.Message, uniqueViolation) {
		return nil, errs.ErrAlreadyRegistered
	}
	return nil, failure(res.Err, msgRegisterFailed, msgRegisterNet)
}

// Rename validates and applies the new name. An empty success (204) counts as success.
func (s *AuthServiceImpl) Rename(ctx context.Context, u model.User, newName string) (string, bool, error) {
	name, err := form.ValidateRename(newName)
	if err != nil {
		return "", false, err
	}
	if name == u.DriverName {
		return name, false, nil
	}
	res := s.api.ChangeName(ctx, u.TgID, name)
	if res.OK() && (res.Data == nil || res.Data.Success) {
		return name, true, nil
	}
	return "", false, failure(res.Err, msgRenameFailed, msgShortNetwork)
}
