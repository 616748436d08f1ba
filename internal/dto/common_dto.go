package dto

// IDRequest 以 id 指定目标的请求体
type IDRequest struct {
	ID int64 `json:"id" binding:"required,min=1"`
}

// IDParam 路径参数
type IDParam struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

// CreatedResponse 创建成功
type CreatedResponse struct {
	ProjectID int64 `json:"projectId"`
}
