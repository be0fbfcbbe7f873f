package model

import "time"

const TableNameReport = "reports"

// Report mapped from table <reports>
type Report struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	Question  string    `gorm:"column:question;type:text;not null" json:"question"`
	Content   string    `gorm:"column:content;type:longtext;not null" json:"content"`
	Metadata  string    `gorm:"column:metadata;type:json" json:"metadata"`
	FileSize  int64     `gorm:"column:file_size;not null" json:"file_size"`
	CreatedAt time.Time `gorm:"column:created_at;index;not null" json:"created_at"`
}

// TableName Report's table name
func (*Report) TableName() string {
	return TableNameReport
}
