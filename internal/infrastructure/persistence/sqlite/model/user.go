package model

import "time"

type User struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Email      string    `gorm:"column:email;type:text;not null;uniqueIndex"`
	Name       string    `gorm:"column:name;type:text"`
	Role       string    `gorm:"column:role;type:text;not null;index"`
	CompanyID  *uint     `gorm:"column:company_id"`
	LocationID *uint     `gorm:"column:location_id"`
	Active     bool      `gorm:"column:active;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
}

func (User) TableName() string {
	return "users"
}
