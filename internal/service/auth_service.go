package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"pitapat/internal/dto"
	"pitapat/internal/model"
	gitApi "pitapat/internal/pkg/git/api"
	"pitapat/internal/repository"
	pkgErrors "pitapat/pkg/errors"
)

type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
}

type authService struct {
	store  *repository.Store
	oauth  gitApi.OAuthExchanger
	source gitApi.SourceHost
	logger *zap.Logger
}

func NewAuthService(store *repository.Store, oauth gitApi.OAuthExchanger, source gitApi.SourceHost, logger *zap.Logger) AuthService {
	return &authService{store: store, oauth: oauth, source: source, logger: logger}
}

// Login 授权码换 token → 查询 GitHub 用户 → 同步用户并替换 token, 旧 token 随即失效
func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	accessToken, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	info, err := s.source.GetUser(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	var user *model.User
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		u, err := tx.Users.FindByLogin(info.Login)
		switch {
		case errors.Is(err, pkgErrors.ErrRecordNotFound):
			u = &model.User{Login: info.Login}
			syncProfile(u, info)
			if err := tx.Users.Create(u); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			syncProfile(u, info)
			if err := tx.Users.Update(u); err != nil {
				return err
			}
		}
		user = u
		_, err = tx.Tokens.Replace(u.ID, accessToken)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("用户登录成功", zap.String("login", user.Login), zap.Int64("user_id", user.ID))
	return &dto.LoginResponse{
		ID:          user.ID,
		Login:       user.Login,
		Nickname:    user.Nickname,
		AvatarURL:   user.AvatarURL,
		AccessToken: accessToken,
	}, nil
}

func syncProfile(u *model.User, info *gitApi.UserInfo) {
	if info.Name != "" {
		name := info.Name
		u.Nickname = &name
	}
	if info.AvatarURL != "" {
		avatar := info.AvatarURL
		u.AvatarURL = &avatar
	}
}
