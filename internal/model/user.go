package model

import "time"

// User 身份存储中的用户（仅本子系统需要的字段）
type User struct {
	ID        string    `json:"_id" gorm:"primaryKey;type:varchar(64)"`
	Username  string    `json:"username" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name      string    `json:"name" gorm:"type:varchar(128)"`
	Email     string    `json:"email,omitempty" gorm:"type:varchar(190)"`
	Avatar    string    `json:"avatar,omitempty" gorm:"type:varchar(512)"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string { return "users" }

// DisplayName 优先 Name，其次 Username
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}
