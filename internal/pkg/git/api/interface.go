package api

import "context"

// SourceHost 代码托管平台, 使用调用方自己的 access token
type SourceHost interface {
	// GetLatestCommit 获取仓库默认分支的最新提交, 非 200 时返回 Unauthorized
	GetLatestCommit(ctx context.Context, owner, repo, token string) (*Commit, error)

	// GetUser 获取 token 对应的用户信息
	GetUser(ctx context.Context, token string) (*UserInfo, error)
}

// OAuthExchanger 授权码换取 access token
type OAuthExchanger interface {
	Exchange(ctx context.Context, code string) (string, error)
}
