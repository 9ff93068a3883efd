package models

import (
	"strings"
	"time"
)

type Category struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Product struct {
	ID          int64  `gorm:"primaryKey" json:"id"`
	Brand       string `gorm:"size:100;not null" json:"brand"`
	Model       string `gorm:"size:150;not null" json:"model"`
	Description string `gorm:"size:255" json:"description"`
	CategoryID  int64  `gorm:"index;not null" json:"category_id"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

func (p *Product) DisplayName() string {
	return strings.TrimSpace(p.Brand + " " + p.Model)
}
