package model

type Subscription struct {
	ID       string `gorm:"primaryKey;size:32" json:"id"`
	UserID   string `gorm:"index;not null" json:"user_id"`
	PlanType string `gorm:"not null" json:"plan_type"`
	Amount   int64  `json:"amount"`
	// Manually entered UPI reference, never verified online
	TransactionID *string `gorm:"uniqueIndex" json:"transaction_id,omitempty"`
	CreatedAt     int64   `gorm:"autoCreateTime:milli;not null" json:"created_at"`
	ExpiresAt     int64   `gorm:"not null;index" json:"expires_at"`
}

// Active reports whether the subscription still grants its plan at now (unix ms)
func (s *Subscription) Active(now int64) bool {
	return now < s.ExpiresAt
}
