package models

import (
	"gorm.io/datatypes"
)

// Artwork - запись в коллекции artworks.
type Artwork struct {
	BaseModel
	OwnerID     string `gorm:"type:varchar(36);not null;index;<-:create" json:"owner_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	ImageURL    string `gorm:"column:image_url" json:"image_url"`
	ImagePath   string `gorm:"column:image_path" json:"-"`
	Medium      string `json:"medium,omitempty"`
	Location    string `json:"location,omitempty"`
	Date        string `json:"date,omitempty"`

	// nil - флаг не выставлялся (состояние сразу после загрузки)
	InPortfolio *bool `gorm:"column:in_portfolio" json:"in_portfolio,omitempty"`

	// Variants - URL производных изображений (thumbnail и т.д.)
	Variants datatypes.JSONMap `gorm:"type:json" json:"variants,omitempty"`
}

// ArtworkPatch - частичное обновление. nil-поля не трогаются.
// OwnerID здесь намеренно отсутствует: владелец не меняется после создания.
type ArtworkPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Medium      *string `json:"medium,omitempty"`
	Location    *string `json:"location,omitempty"`
	Date        *string `json:"date,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	InPortfolio *bool   `json:"in_portfolio,omitempty"`
}

// IsEmpty сообщает, что патч ничего не меняет.
func (p ArtworkPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Medium == nil &&
		p.Location == nil && p.Date == nil && p.ImageURL == nil && p.InPortfolio == nil
}

// Apply накладывает патч на запись в памяти.
func (p ArtworkPatch) Apply(a *Artwork) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Description != nil {
		a.Description = *p.Description
	}
	if p.Medium != nil {
		a.Medium = *p.Medium
	}
	if p.Location != nil {
		a.Location = *p.Location
	}
	if p.Date != nil {
		a.Date = *p.Date
	}
	if p.ImageURL != nil {
		a.ImageURL = *p.ImageURL
	}
	if p.InPortfolio != nil {
		v := *p.InPortfolio
		a.InPortfolio = &v
	}
}

// Columns переводит патч в карту колонок для gorm Updates.
func (p ArtworkPatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.Medium != nil {
		cols["medium"] = *p.Medium
	}
	if p.Location != nil {
		cols["location"] = *p.Location
	}
	if p.Date != nil {
		cols["date"] = *p.Date
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	if p.InPortfolio != nil {
		cols["in_portfolio"] = *p.InPortfolio
	}
	return cols
}

// Clone возвращает копию записи, не разделяющую указатели и карты с оригиналом.
func (a Artwork) Clone() Artwork {
	c := a
	if a.InPortfolio != nil {
		v := *a.InPortfolio
		c.InPortfolio = &v
	}
	if a.Variants != nil {
		c.Variants = make(datatypes.JSONMap, len(a.Variants))
		for k, v := range a.Variants {
			c.Variants[k] = v
		}
	}
	return c
}

// IsInPortfolio - удобный доступ к nullable-флагу.
func (a Artwork) IsInPortfolio() bool {
	return a.InPortfolio != nil && *a.InPortfolio
}

// Bool и String возвращают указатели для построения патчей.
func Bool(v bool) *bool       { return &v }
func String(v string) *string { return &v }
