package model

import "time"

type Company struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;type:text;not null;uniqueIndex"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (Company) TableName() string {
	return "companies"
}

type Location struct {
	ID               uint      `gorm:"column:id;primaryKey;autoIncrement"`
	CompanyID        uint      `gorm:"column:company_id;not null;index"`
	Company          *Company  `gorm:"foreignKey:CompanyID;constraint:OnDelete:CASCADE"`
	Name             string    `gorm:"column:name;type:text;not null"`
	ResponsibleEmail *string   `gorm:"column:responsible_email;type:text"`
	CreatedAt        time.Time `gorm:"column:created_at;not null"`
}

func (Location) TableName() string {
	return "locations"
}
