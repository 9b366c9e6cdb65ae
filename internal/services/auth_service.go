package services

import (
	"context"
	"strings"

	"artfolio_backend/internal/auth"
	"artfolio_backend/internal/gateway"
	"artfolio_backend/internal/identity"
	"artfolio_backend/internal/logger"
	"artfolio_backend/internal/models"
	"artfolio_backend/internal/services/dto"
	"artfolio_backend/pkg/apperrors"

	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	// Login открывает сессию. Непустой sessionID переиспользует открытую сессию
	// (смена пользователя в той же вкладке).
	Login(ctx context.Context, req *dto.LoginRequest, sessionID string) (*dto.AuthResponse, error)
	Logout(ctx context.Context, sessionID string) error
	Me(ctx context.Context, sessionID string) (*dto.UserResponse, error)
}

type authService struct {
	store    gateway.Gateway
	identity *identity.Provider
}

func NewAuthService(store gateway.Gateway, provider *identity.Provider) AuthService {
	return &authService{
		store:    store,
		identity: provider,
	}
}

// Register - регистрация нового пользователя.
// Проверка имени и вставка не атомарны: два параллельных запроса с одним
// username могут оба пройти проверку.
func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if err := auth.ValidatePassword(req.Password); err != nil {
		return nil, apperrors.ValidationError(map[string]string{"password": err.Error()})
	}

	existing, err := s.store.FindUser(ctx, models.UserFilter{Username: req.Username})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrUsernameTaken
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	existing, err = s.store.FindUser(ctx, models.UserFilter{Email: email})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if existing != nil {
		return nil, apperrors.ErrEmailAlreadyExists
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	displayName := req.DisplayName
	if displayName == "" {
		displayName = req.Username
	}

	user := &models.User{
		Username:     req.Username,
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
	}
	if _, err := s.store.InsertUser(ctx, user); err != nil {
		return nil, apperrors.DatabaseError(err)
	}

	logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "username", user.Username)

	return s.signIn(ctx, user, "")
}

// Login - вход по username или email
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, sessionID string) (*dto.AuthResponse, error) {
	filter := models.UserFilter{Username: req.Login}
	if strings.Contains(req.Login, "@") {
		filter = models.UserFilter{Email: strings.ToLower(strings.TrimSpace(req.Login))}
	}

	user, err := s.store.FindUser(ctx, filter)
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if user == nil || !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		logger.CtxWarn(ctx, "login failed", "login", req.Login)
		return nil, apperrors.ErrInvalidCredentials
	}

	return s.signIn(ctx, user, sessionID)
}

func (s *authService) Logout(ctx context.Context, sessionID string) error {
	if !s.identity.SignOut(ctx, sessionID) {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Me - текущий пользователь сессии, перечитанный из хранилища по UID
func (s *authService) Me(ctx context.Context, sessionID string) (*dto.UserResponse, error) {
	current, ok := s.identity.CurrentUser(sessionID)
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}

	user, err := s.store.FindUser(ctx, models.UserFilter{UID: current.UID})
	if err != nil {
		return nil, apperrors.DatabaseError(err)
	}
	if user == nil {
		return nil, apperrors.ErrNotFound(nil).WithDetails("user " + current.UID)
	}

	return toUserResponse(user), nil
}

// ============================================
// ВСПОМОГАТЕЛЬНЫЕ МЕТОДЫ
// ============================================

func (s *authService) signIn(ctx context.Context, user *models.User, sessionID string) (*dto.AuthResponse, error) {
	current := toIdentityUser(user)
	token, err := s.identity.SignIn(ctx, current, sessionID)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken: token.AccessToken,
		SessionID:   token.SessionID,
		ExpiresAt:   token.ExpiresAt,
		User:        current,
	}, nil
}

func toIdentityUser(user *models.User) identity.User {
	return identity.User{
		ID:          user.ID,
		UID:         user.UID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
	}
}

func toUserResponse(user *models.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:          user.ID,
		UID:         user.UID,
		Username:    user.Username,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
	}
}
