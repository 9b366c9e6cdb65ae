package dto

// ReorderRequest - перенос карточки из позиции source в destination
type ReorderRequest struct {
	Source      *int `json:"source" validate:"required"`
	Destination *int `json:"destination" validate:"required"`
}

// RemovalRequest - запрос на удаление карточки из портфолио
type RemovalRequest struct {
	ArtworkID string `json:"artwork_id" validate:"required"`
}

// EditorSaveRequest - изменения черновика редактора
type EditorSaveRequest struct {
	Title       *string `json:"title,omitempty" validate:"omitempty,not-blank,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=5000"`
	Medium      *string `json:"medium,omitempty" validate:"omitempty,max=255"`
	Location    *string `json:"location,omitempty" validate:"omitempty,max=255"`
	Date        *string `json:"date,omitempty" validate:"omitempty,max=64"`
}

// ReorderResponse - результат переноса
type ReorderResponse struct {
	Moved bool `json:"moved"`
}

// RemovalResponse - итог подтверждённого удаления
type RemovalResponse struct {
	ArtworkID string `json:"artwork_id"`
	Removed   bool   `json:"removed"`
}
