package models

// User - запись в коллекции users.
// Уникальность Username обеспечивается проверкой перед вставкой, а не индексом БД.
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(64);not null;index" json:"username"`
	UID          string `gorm:"column:uid;type:varchar(36);not null;uniqueIndex" json:"uid"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex" json:"email"`
	DisplayName  string `gorm:"type:varchar(255)" json:"display_name"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// UserFilter - условие для поиска одного пользователя. Пустые поля игнорируются.
type UserFilter struct {
	Username string
	UID      string
	Email    string
}

// IsEmpty сообщает, что фильтр не задаёт ни одного условия.
func (f UserFilter) IsEmpty() bool {
	return f.Username == "" && f.UID == "" && f.Email == ""
}
