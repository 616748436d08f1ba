package service

import (
	"context"
	"strings"

	"pitapat/internal/repository"
	pkgErrors "pitapat/pkg/errors"
)

// AuthorizationService token → userId, token 即 GitHub access token, 按精确匹配查找
type AuthorizationService interface {
	Authorize(ctx context.Context, token string) (int64, error)
}

type authorizationService struct {
	tokenRepo repository.TokenRepository
}

func NewAuthorizationService(tokenRepo repository.TokenRepository) AuthorizationService {
	return &authorizationService{tokenRepo: tokenRepo}
}

func (s *authorizationService) Authorize(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, pkgErrors.ErrMissingToken
	}
	t, err := s.tokenRepo.FindByAccessToken(token)
	if err != nil {
		return 0, err
	}
	return t.UserID, nil
}
