package model

// User GitHub 登录用户
type User struct {
	BaseModel
	Login     string  `gorm:"size:100;not null;uniqueIndex" json:"login"`
	Nickname  *string `gorm:"size:100" json:"nickname"`
	AvatarURL *string `gorm:"column:avatar_url;size:500" json:"avatar_url"`
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}

// Token 用户的 GitHub access token, 每个用户仅保留最近一次登录签发的 token
type Token struct {
	BaseModel
	UserID      int64  `gorm:"column:user_id;not null;uniqueIndex" json:"user_id"`
	AccessToken string `gorm:"column:access_token;size:255;not null;uniqueIndex" json:"-"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Token) TableName() string {
	return "tokens"
}
