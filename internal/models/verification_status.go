package models

import "time"

// VerificationStatus — статус подтверждения пары (user, project).
// Одна запись на пару, переход unverified -> verified ровно один раз.
type VerificationStatus struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	ProjectID  int64      `json:"project_id"`
	Verified   bool       `json:"verified"`
	VerifiedAt *time.Time `json:"verified_at"`
}
