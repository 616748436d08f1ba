package github

import (
	"context"

	"golang.org/x/oauth2"
	githubOAuth "golang.org/x/oauth2/github"

	"pitapat/internal/pkg/config"
	"pitapat/internal/pkg/git/api"
	pkgErrors "pitapat/pkg/errors"
)

// OAuth GitHub OAuth App 授权码交换
type OAuth struct {
	cfg *oauth2.Config
}

// NewOAuth endpoint 为空时使用 GitHub 官方地址
func NewOAuth(cfg *config.GitHubConfig, endpoint *oauth2.Endpoint) *OAuth {
	ep := githubOAuth.Endpoint
	if endpoint != nil {
		ep = *endpoint
	}
	return &OAuth{cfg: &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Endpoint:     ep,
	}}
}

var _ api.OAuthExchanger = (*OAuth)(nil)

// Exchange 授权码换 access token
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	tok, err := o.cfg.Exchange(ctx, code)
	if err != nil {
		return "", pkgErrors.Wrap(pkgErrors.KindBadRequest, "GitHub授权失败", err)
	}
	return tok.AccessToken, nil
}
