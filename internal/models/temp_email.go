package models

import "gorm.io/gorm"

// TempEmail holds a candidate address during an email change. The live
// address on the User is only replaced once the code sent to the candidate
// address is confirmed, after which the record is deleted.
type TempEmail struct {
	gorm.Model

	SessionID string `gorm:"uniqueIndex;not null"`
	Email     string `gorm:"not null"`
	Code      string `gorm:"not null"`
	UserID    uint   `gorm:"not null;index"`
}
