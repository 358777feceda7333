// Package model defines database models
package model

type File struct {
	ID     string `gorm:"primaryKey;size:32" json:"id"`
	UserID string `gorm:"index;not null" json:"user_id"`

	// Objects live under {user}/{millis}-{id}-{name} so two files with the same
	// name never share a key. Keys are never reused after deletion
	StorageKey string `gorm:"uniqueIndex;not null" json:"-"`

	OriginalName string `json:"filename"`
	ContentType  string `json:"content_type"`
	Size         int64  `json:"size"`
	Downloads    int64  `gorm:"not null;default:0" json:"downloads"`

	// All are unix millisecond timestamps
	CreatedAt int64  `gorm:"autoCreateTime:milli;not null;index" json:"created_at"`
	ExpiresAt *int64 `gorm:"index" json:"expires_at"`
	// Owner's subscription expiry at upload time. Nil for free tier uploads
	PlanExpiresAt *int64 `json:"plan_expires_at"`

	PublicURL string `gorm:"-" json:"public_url,omitempty"`
}

// Visible reports whether the file can still be shown or downloaded at now (unix ms)
func (f *File) Visible(now int64) bool {
	return f.ExpiresAt == nil || now < *f.ExpiresAt
}
