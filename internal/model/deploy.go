package model

import "time"

const DeployTableName = "deploys"

// Deploy 部署记录, 删除项目前 build_id 会被置空, 历史记录保留
type Deploy struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	BuildID    *int64    `gorm:"column:build_id;index" json:"build_id"`
	DeployDate time.Time `gorm:"column:deploy_date;not null;autoCreateTime" json:"deploy_date"`

	Build *Build `gorm:"foreignKey:BuildID" json:"-"`
}

// TableName 指定表名
func (Deploy) TableName() string {
	return DeployTableName
}
