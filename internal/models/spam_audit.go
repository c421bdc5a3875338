package models

import (
	"time"
)

// Dispositions recorded on spam audit rows.
const (
	DispositionFlaggedForReview = "flagged_for_review"
	DispositionAutoFlagged      = "auto_flagged"
	DispositionReviewNeeded     = "review_needed"
)

// SpamAudit captures a suspicious signup for asynchronous admin review.
// Writes are best-effort: a failed insert must never fail the signup itself.
type SpamAudit struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UUID        string    `json:"uuid" gorm:"uniqueIndex"`
	OrgName     string    `json:"org_name"`
	OwnerName   string    `json:"owner_name"`
	Score       int       `json:"score"`
	Reasons     string    `json:"reasons" gorm:"type:text"` // joined, deduplicated
	Disposition string    `json:"disposition" gorm:"index"`
	CreatedAt   time.Time `json:"created_at"`
}
