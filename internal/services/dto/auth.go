package dto

import (
	"time"

	"artfolio_backend/internal/identity"
)

// RegisterRequest - запрос регистрации
type RegisterRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	DisplayName string `json:"display_name" validate:"omitempty,max=255"`
}

// LoginRequest - вход по username или email
type LoginRequest struct {
	Login    string `json:"login" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse - ответ после входа или регистрации
type AuthResponse struct {
	AccessToken string        `json:"access_token"`
	SessionID   string        `json:"session_id"`
	ExpiresAt   time.Time     `json:"expires_at"`
	User        identity.User `json:"user"`
}

// UserResponse - публичные данные пользователя
type UserResponse struct {
	ID          string    `json:"id"`
	UID         string    `json:"uid"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}
