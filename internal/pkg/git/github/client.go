package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pitapat/internal/pkg/git/api"
	pkgErrors "pitapat/pkg/errors"
)

const DefaultBaseURL = "https://api.github.com"

// Provider GitHub REST API
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

// NewProvider 创建GitHub提供者, baseURL 为空时使用 api.github.com
func NewProvider(baseURL string) *Provider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Provider{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

var _ api.SourceHost = (*Provider)(nil)

// GetLatestCommit 获取最新提交
func (p *Provider) GetLatestCommit(ctx context.Context, owner, repo, token string) (*api.Commit, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1", p.baseURL, url.PathEscape(owner), url.PathEscape(repo))

	var commits []struct {
		SHA    string `json:"sha"`
		Commit struct {
			Message string `json:"message"`
		} `json:"commit"`
	}
	if err := p.get(ctx, u, token, &commits); err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, pkgErrors.ErrSourceHost.WithCause(fmt.Errorf("仓库 %s/%s 没有提交记录", owner, repo))
	}

	return &api.Commit{
		SHA:     commits[0].SHA,
		Message: commits[0].Commit.Message,
	}, nil
}

// GetUser 获取当前用户
func (p *Provider) GetUser(ctx context.Context, token string) (*api.UserInfo, error) {
	var user struct {
		ID        int64  `json:"id"`
		Login     string `json:"login"`
		Name      string `json:"name"`
		AvatarURL string `json:"avatar_url"`
	}
	if err := p.get(ctx, p.baseURL+"/user", token, &user); err != nil {
		return nil, err
	}

	return &api.UserInfo{
		ID:        user.ID,
		Login:     user.Login,
		Name:      user.Name,
		AvatarURL: user.AvatarURL,
	}, nil
}

func (p *Provider) get(ctx context.Context, u, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return pkgErrors.Wrap(pkgErrors.KindAdapterFailure, "请求GitHub失败", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return pkgErrors.ErrSourceHost.WithCause(fmt.Errorf("状态码: %d: %s", resp.StatusCode, string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgErrors.Wrap(pkgErrors.KindAdapterFailure, "解析GitHub响应失败", err)
	}
	return nil
}
