package model

import "time"

type Vehicle struct {
	ID                           uint       `gorm:"column:id;primaryKey;autoIncrement"`
	Plate                        string     `gorm:"column:plate;type:text;not null;uniqueIndex"`
	CompanyID                    *uint      `gorm:"column:company_id;index"`
	Company                      *Company   `gorm:"foreignKey:CompanyID;constraint:OnDelete:SET NULL"`
	LocationID                   *uint      `gorm:"column:location_id;index"`
	Location                     *Location  `gorm:"foreignKey:LocationID;constraint:OnDelete:SET NULL"`
	Status                       string     `gorm:"column:status;type:text;not null;default:active;index"`
	InspectionTracked            bool       `gorm:"column:inspection_tracked;not null"`
	InsuranceTracked             bool       `gorm:"column:insurance_tracked;not null"`
	InspectionExpiry             *time.Time `gorm:"column:inspection_expiry"`
	TrafficInsuranceExpiry       *time.Time `gorm:"column:traffic_insurance_expiry"`
	ComprehensiveInsuranceExpiry *time.Time `gorm:"column:comprehensive_insurance_expiry"`
	CreatedAt                    time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt                    time.Time  `gorm:"column:updated_at;not null"`
}

func (Vehicle) TableName() string {
	return "vehicles"
}
