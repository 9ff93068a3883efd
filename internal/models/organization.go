package models

import (
	"strings"
	"time"
)

type Sector struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:150;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Branch struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"size:150;uniqueIndex;not null" json:"name"`
	Address   string `gorm:"size:255" json:"address"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Employee struct {
	ID        int64  `gorm:"primaryKey" json:"id"`
	FirstName string `gorm:"size:100;not null" json:"first_name"`
	LastName  string `gorm:"size:100;not null" json:"last_name"`
	Email     string `gorm:"size:255;index" json:"email"`
	SectorID  *int64 `gorm:"index" json:"sector_id,omitempty"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Sector *Sector `gorm:"foreignKey:SectorID" json:"sector,omitempty"`
}

func (e *Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}
