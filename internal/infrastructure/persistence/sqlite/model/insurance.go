package model

import "time"

type Insurance struct {
	ID               uint       `gorm:"column:id;primaryKey;autoIncrement"`
	VehicleID        uint       `gorm:"column:vehicle_id;not null;index:idx_insurances_vehicle_sub_type"`
	Vehicle          *Vehicle   `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	SubType          string     `gorm:"column:sub_type;type:text;not null;index:idx_insurances_vehicle_sub_type"`
	PolicyNo         string     `gorm:"column:policy_no;type:text"`
	Insurer          string     `gorm:"column:insurer;type:text"`
	AgencyName       string     `gorm:"column:agency_name;type:text"`
	AgencyPhone      string     `gorm:"column:agency_phone;type:text"`
	StartsAt         time.Time  `gorm:"column:starts_at;not null"`
	ValidUntil       time.Time  `gorm:"column:valid_until;not null;index"`
	Premium          *float64   `gorm:"column:premium"`
	PaymentStatus    string     `gorm:"column:payment_status;type:text;not null;default:unpaid"`
	PaymentPlan      string     `gorm:"column:payment_plan;type:text"`
	InstallmentCount *int       `gorm:"column:installment_count"`
	PaidAt           *time.Time `gorm:"column:paid_at"`
	Coverage         string     `gorm:"column:coverage;type:text"`
	Notes            string     `gorm:"column:notes;type:text"`
	CreatedBy        *uint      `gorm:"column:created_by"`
	CreatedAt        time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt        time.Time  `gorm:"column:updated_at;not null"`
}

func (Insurance) TableName() string {
	return "insurances"
}
