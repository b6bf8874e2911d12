package model

import "time"

type Inspection struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	VehicleID     uint      `gorm:"column:vehicle_id;not null;index"`
	Vehicle       *Vehicle  `gorm:"foreignKey:VehicleID;constraint:OnDelete:CASCADE"`
	InspectedAt   time.Time `gorm:"column:inspected_at;not null"`
	ValidUntil    time.Time `gorm:"column:valid_until;not null;index"`
	Outcome       string    `gorm:"column:outcome;type:text;not null"`
	Kind          string    `gorm:"column:kind;type:text;not null;default:periodic"`
	Station       string    `gorm:"column:station;type:text"`
	StationRegion string    `gorm:"column:station_region;type:text"`
	ReportNo      string    `gorm:"column:report_no;type:text"`
	Fee           *float64  `gorm:"column:fee"`
	FailureReason string    `gorm:"column:failure_reason;type:text"`
	FailureDetail string    `gorm:"column:failure_detail;type:text"`
	Notes         string    `gorm:"column:notes;type:text"`
	CreatedBy     *uint     `gorm:"column:created_by"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

func (Inspection) TableName() string {
	return "inspections"
}
