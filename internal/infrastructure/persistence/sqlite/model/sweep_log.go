package model

import "time"

type SweepLog struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement"`
	RunID         string    `gorm:"column:run_id;type:text;not null;index"`
	JobName       string    `gorm:"column:job_name;type:text;not null;index"`
	Status        string    `gorm:"column:status;type:text;not null"`
	Message       string    `gorm:"column:message;type:text;not null"`
	AffectedCount int       `gorm:"column:affected_count;not null;default:0"`
	CreatedAt     time.Time `gorm:"column:created_at;not null;index"`
}

func (SweepLog) TableName() string {
	return "sweep_logs"
}
