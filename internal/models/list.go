package models

import "gorm.io/gorm"

// List is a column on a project board. Position defines the display order
// of the lists within their project.
type List struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	ProjectID   uint `gorm:"not null;index"`
	Position    int  `gorm:"not null;default:0"`

	// Relationships
	Tasks []Task `gorm:"foreignKey:ListID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// DefaultListTitles are the lists every new project starts with, in order.
var DefaultListTitles = []string{"Planned", "Todo", "In Progress", "Completed"}
