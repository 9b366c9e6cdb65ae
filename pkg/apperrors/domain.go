package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики
// =========================================================================

// ErrNotFound - фабрика для ошибки "не найдено" (404)
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict - общая фабрика для конфликтов (409)
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

// ErrInvalidOperation - фабрика для невалидных операций (400)
func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Auth
// =========================================================================

// ErrUsernameTaken - имя пользователя уже занято (проверка перед вставкой).
var ErrUsernameTaken = ErrConflict(nil, "auth", "Username already exists")

// ErrEmailAlreadyExists - email уже используется.
var ErrEmailAlreadyExists = ErrConflict(nil, "auth", "Email already in use")

// ErrInvalidCredentials - неверный логин или пароль.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid username or password",
	http.StatusUnauthorized,
)

// ErrInvalidToken - неверный, просроченный или отозванный токен.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrSessionNotFound - сессия не найдена (пользователь вышел или сервер перезапущен).
var ErrSessionNotFound = New(
	CodeSessionNotFound,
	"session",
	"Session not found, sign in again",
	http.StatusUnauthorized,
)

// =========================================================================
// Artworks
// =========================================================================

// ErrArtworkNotFound - работа не найдена.
var ErrArtworkNotFound = New(
	CodeNotFound,
	"artwork",
	"Artwork not found",
	http.StatusNotFound,
)

// ErrArtworkAccessDenied - работа принадлежит другому пользователю.
var ErrArtworkAccessDenied = NewForbiddenError("Access to artwork denied")

// =========================================================================
// Uploads
// =========================================================================

// ErrFileTooLarge - файл превышает максимальный размер.
var ErrFileTooLarge = New(
	CodeLimitExceeded,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

// ErrInvalidFileType - MIME-тип файла не разрешен.
var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// ErrPendingLimitExceeded - слишком много незагруженных файлов в сессии.
var ErrPendingLimitExceeded = New(
	CodeLimitExceeded,
	"upload",
	"Too many pending uploads in this session",
	http.StatusConflict,
)

// ErrPendingUploadNotFound - черновик загрузки не найден (отменён или истёк).
var ErrPendingUploadNotFound = New(
	CodeNotFound,
	"upload",
	"Pending upload not found",
	http.StatusNotFound,
)

// =========================================================================
// Portfolio session
// =========================================================================

// ErrNotAvailable - работы нет в списке доступных.
var ErrNotAvailable = New(
	CodeNotFound,
	"portfolio",
	"Artwork is not in the available list",
	http.StatusNotFound,
)

// ErrNoPendingRemoval - подтверждение удаления без запроса.
var ErrNoPendingRemoval = New(
	CodeInvalidOperation,
	"portfolio",
	"No removal is pending confirmation",
	http.StatusConflict,
)

// ErrEditorClosed - сохранение без открытого редактора.
var ErrEditorClosed = New(
	CodeInvalidOperation,
	"portfolio",
	"Editor is not open",
	http.StatusConflict,
)

// ErrNotInPortfolio - работы нет в текущем списке портфолио.
var ErrNotInPortfolio = New(
	CodeNotFound,
	"portfolio",
	"Artwork is not in the portfolio",
	http.StatusNotFound,
)
