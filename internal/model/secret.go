package model

// Secret 项目环境变量, value 为密文
type Secret struct {
	ProjectID int64  `gorm:"column:project_id;primaryKey;autoIncrement:false" json:"project_id"`
	Key       string `gorm:"column:key;primaryKey;size:255" json:"key"`
	Value     string `gorm:"column:value;type:text;not null" json:"-"`

	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Secret) TableName() string {
	return "secrets"
}
