package jwt

import (
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pitapat/internal/pkg/config"
	"pitapat/pkg/constants"
	pkgErrors "pitapat/pkg/errors"
)

// CallbackClaims 构建回调令牌, 随触发参数交给工作流, 回调时原样带回
type CallbackClaims struct {
	ProjectID int64  `json:"project_id"`
	ImageTag  string `json:"image_tag"`
	Type      string `json:"type"`
	jwt.RegisteredClaims
}

// CallbackSigner 签发/校验回调令牌, secret 为空时视为未启用
type CallbackSigner struct {
	secret []byte
	expire time.Duration
}

func NewCallbackSigner(cfg *config.CallbackConfig) *CallbackSigner {
	expire := time.Duration(cfg.Expire) * time.Second
	if expire <= 0 {
		expire = time.Hour
	}
	return &CallbackSigner{secret: []byte(cfg.Secret), expire: expire}
}

// Enabled 是否启用回调校验
func (s *CallbackSigner) Enabled() bool {
	return s != nil && len(s.secret) > 0
}

// Generate 生成回调令牌
func (s *CallbackSigner) Generate(projectID int64, imageTag string) (string, error) {
	if !s.Enabled() {
		return "", nil
	}

	now := time.Now()
	claims := CallbackClaims{
		ProjectID: projectID,
		ImageTag:  imageTag,
		Type:      constants.JWTTypeCallback,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(projectID, 10),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expire)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Validate 校验回调令牌并确认项目一致
func (s *CallbackSigner) Validate(tokenString string, projectID int64) (*CallbackClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CallbackClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, pkgErrors.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*CallbackClaims)
	if !ok || !token.Valid || claims.Type != constants.JWTTypeCallback {
		return nil, pkgErrors.ErrInvalidToken
	}
	if claims.ProjectID != projectID {
		return nil, pkgErrors.ErrInvalidToken.WithCause(fmt.Errorf("令牌项目 %d 与回调项目 %d 不一致", claims.ProjectID, projectID))
	}
	return claims, nil
}
