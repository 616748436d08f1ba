package dto

// LoginRequest GitHub OAuth 登录, code 为授权回调中的授权码
type LoginRequest struct {
	Code string `json:"code" binding:"required"`
}

// LoginResponse 登录响应, token 通过 Authorization 响应头返回
type LoginResponse struct {
	ID        int64   `json:"id"`
	Login     string  `json:"login"`
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatarUrl"`

	AccessToken string `json:"-"`
}
