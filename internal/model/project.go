package model

import "pitapat/pkg/constants"

const ProjectTableName = "projects"

// Project 项目, status 是生命周期状态的唯一来源
type Project struct {
	BaseModel
	UserID int64 `gorm:"column:user_id;not null;index" json:"user_id"`

	// 指向 builds/deploys 的弱引用, 不建外键
	CurrentBuildID   *int64 `gorm:"column:current_build_id" json:"current_build_id"`
	CurrentDeployID  *int64 `gorm:"column:current_deploy_id" json:"current_deploy_id"`
	DeployingBuildID *int64 `gorm:"column:deploying_build_id" json:"deploying_build_id"`

	// 用户发起、尚未回调的构建标签
	BuildingImageTag *string `gorm:"column:building_image_tag;size:64" json:"building_image_tag"`

	Name      string                  `gorm:"size:100;not null" json:"name"`
	Framework string                  `gorm:"size:50" json:"framework"`
	Port      int                     `gorm:"not null;default:80" json:"port"`
	Status    constants.ProjectStatus `gorm:"not null;default:0;index" json:"status"`

	// 弹性伸缩
	AutoScaling  bool `gorm:"column:auto_scaling;not null;default:false" json:"auto_scaling"`
	MinReplicas  *int `gorm:"column:min_replicas" json:"min_replicas"`
	MaxReplicas  *int `gorm:"column:max_replicas" json:"max_replicas"`
	CPUThreshold *int `gorm:"column:cpu_threshold" json:"cpu_threshold"`

	// 创建发布成功后写入一次
	DomainURL  *string `gorm:"column:domain_url;size:255" json:"domain_url"`
	WebhookURL *string `gorm:"column:webhook_url;size:255" json:"webhook_url"`
	Subdomain  string  `gorm:"size:63;not null;uniqueIndex" json:"subdomain"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Project) TableName() string {
	return ProjectTableName
}

// IsOwnedBy 是否属于指定用户
func (p *Project) IsOwnedBy(userID int64) bool {
	return p.UserID == userID
}
