package repository

import (
	"gorm.io/gorm"

	"pitapat/internal/model"
	pkgErrors "pitapat/pkg/errors"
)

// TokenRepository 用户 access token, 每个用户一行
type TokenRepository interface {
	FindByAccessToken(accessToken string) (*model.Token, error)
	FindByUserID(userID int64) (*model.Token, error)
	// Replace 删除旧 token 后写入新 token, 需在事务中调用
	Replace(userID int64, accessToken string) (*model.Token, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) FindByAccessToken(accessToken string) (*model.Token, error) {
	var token model.Token
	if err := r.db.Where("access_token = ?", accessToken).First(&token).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrInvalidToken, "查询token失败")
	}
	return &token, nil
}

func (r *tokenRepository) FindByUserID(userID int64) (*model.Token, error) {
	var token model.Token
	if err := r.db.Where("user_id = ?", userID).First(&token).Error; err != nil {
		return nil, translate(err, pkgErrors.ErrRecordNotFound, "查询token失败")
	}
	return &token, nil
}

func (r *tokenRepository) Replace(userID int64, accessToken string) (*model.Token, error) {
	if err := r.db.Where("user_id = ?", userID).Delete(&model.Token{}).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "删除旧token失败", err)
	}
	token := &model.Token{UserID: userID, AccessToken: accessToken}
	if err := r.db.Create(token).Error; err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.KindPersistenceFailure, "保存token失败", err)
	}
	return token, nil
}
