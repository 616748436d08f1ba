package model

import "time"

const BuildTableName = "builds"

// Build 构建记录, (project_id, image_tag) 唯一
type Build struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	ProjectID int64     `gorm:"column:project_id;not null;uniqueIndex:uk_project_image_tag" json:"project_id"`
	BuildDate time.Time `gorm:"column:build_date;not null;autoCreateTime" json:"build_date"`
	CommitMsg string    `gorm:"column:commit_msg;type:text" json:"commit_msg"`
	ImageName string    `gorm:"column:image_name;size:255" json:"image_name"`
	ImageTag  string    `gorm:"column:image_tag;size:64;not null;uniqueIndex:uk_project_image_tag" json:"image_tag"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Build) TableName() string {
	return BuildTableName
}
