package model

// Stats is a per user row. Uploads lock it before re-counting quota so that
// concurrent uploads from one user can't both slip under the limit
type Stats struct {
	UserID       string `gorm:"primaryKey" json:"-"`
	TotalUploads int64  `gorm:"not null;default:0" json:"totalUploads"`
	LastUploadAt int64  `json:"lastUploadAt"`
}
