package models

import "gorm.io/gorm"

// Task belongs to both a project and one of its lists. Order defines the
// position within the list. The column is named sort_order because "order"
// is a reserved word in SQL.
type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Completed   bool `gorm:"default:false"`
	ProjectID   uint `gorm:"not null;index"`
	ListID      uint `gorm:"not null;index"`
	Order       int  `gorm:"column:sort_order;not null"`
}
