package dto

import "pitapat/pkg/constants"

// BuildEventRequest 构建工作流回调
type BuildEventRequest struct {
	ProjectID int64  `json:"projectId" binding:"required,min=1"`
	Status    string `json:"status" binding:"required"` // build-success 或其他
	CommitMsg string `json:"commitMsg"`
	ImageName string `json:"imageName"`
	ImageTag  string `json:"imageTag" binding:"omitempty,max=64"`
}

// DeployEventRequest 发布状态回调, status 为 Healthy/Degraded/InvalidSpec/Progressing
type DeployEventRequest struct {
	BuildID int64  `json:"buildId" binding:"required,min=1"`
	Status  string `json:"status" binding:"required"`
}

// DeployStatusQuery 查询发布状态
type DeployStatusQuery struct {
	BuildID int64 `form:"buildId" binding:"required,min=1"`
}

// DeployStatusResponse 发布状态, applied 为 false 时 health 未应用到项目 (非终态或构建已不是部署目标)
type DeployStatusResponse struct {
	BuildID int64                   `json:"buildId"`
	Health  string                  `json:"health"`
	Applied bool                    `json:"applied"`
	Status  constants.ProjectStatus `json:"status"`
}
