package api

// Commit 最新提交
type Commit struct {
	SHA     string `json:"sha"`
	Message string `json:"message"`
}

// ShortSHA 取前 7 位作为镜像 tag
func (c *Commit) ShortSHA() string {
	if len(c.SHA) <= 7 {
		return c.SHA
	}
	return c.SHA[:7]
}

// UserInfo 用户信息
type UserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
}
