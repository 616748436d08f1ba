package model

import (
	"time"

	"gorm.io/datatypes"

	"pitapat/pkg/constants"
)

// ProjectLog 项目状态流转记录, 项目删除后保留
type ProjectLog struct {
	ID         int64                   `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID  int64                   `gorm:"column:project_id;not null;index" json:"project_id"`
	Event      string                  `gorm:"size:50;not null" json:"event"`
	FromStatus constants.ProjectStatus `gorm:"column:from_status;not null" json:"from_status"`
	ToStatus   constants.ProjectStatus `gorm:"column:to_status;not null" json:"to_status"`
	Payload    datatypes.JSON          `gorm:"type:json" json:"payload,omitempty"`
	CreatedAt  time.Time               `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (ProjectLog) TableName() string {
	return "project_logs"
}
