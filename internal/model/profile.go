package model

// Profile guards a user's public file list. Only the argon2id hash of the
// profile password is stored
type Profile struct {
	UserID       string `gorm:"primaryKey" json:"-"`
	PasswordHash string `gorm:"not null" json:"-"`
	UpdatedAt    int64  `gorm:"not null" json:"updatedAt"`
}
