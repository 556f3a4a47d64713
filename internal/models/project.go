package models

import "gorm.io/gorm"

const (
	ProjectStatusActive    = "active"
	ProjectStatusCompleted = "completed"
	ProjectStatusArchived  = "archived"

	ProjectPriorityLow     = "low"
	ProjectPriorityMedium  = "medium"
	ProjectPriorityHigh    = "high"
	ProjectPriorityDefault = "default"
)

func ValidProjectStatus(status string) bool {
	switch status {
	case ProjectStatusActive, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

func ValidProjectPriority(priority string) bool {
	switch priority {
	case ProjectPriorityLow, ProjectPriorityMedium, ProjectPriorityHigh, ProjectPriorityDefault:
		return true
	}
	return false
}

type Project struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	OwnerID     uint   `gorm:"not null;index"`
	Status      string `gorm:"not null;default:active"`
	Priority    string `gorm:"not null;default:default"`
	IsPublic    bool   `gorm:"default:false"`

	// Relationships
	Owner User   `gorm:"foreignKey:OwnerID"`
	Lists []List `gorm:"foreignKey:ProjectID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}
