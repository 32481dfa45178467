package models

type User struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	Username     string `json:"username" gorm:"size:50;uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"size:255;not null"` // bcrypt hash, never serialized
	IsAdmin      bool   `json:"is_admin" gorm:"not null;default:false"`
	IsActive     bool   `json:"is_active" gorm:"not null;default:true"`
}
