package model

import "time"

type ContentType string

const (
	ContentDraft       ContentType = "draft"
	ContentUser        ContentType = "user"
	ContentSharedDraft ContentType = "shared_draft"
)

func (c ContentType) Valid() bool {
	switch c {
	case ContentDraft, ContentUser, ContentSharedDraft:
		return true
	}
	return false
}

type FlagReason string

const (
	ReasonInappropriate FlagReason = "inappropriate"
	ReasonSpam          FlagReason = "spam"
	ReasonCopyright     FlagReason = "copyright"
	ReasonHarassment    FlagReason = "harassment"
	ReasonOther         FlagReason = "other"
)

func (r FlagReason) Valid() bool {
	switch r {
	case ReasonInappropriate, ReasonSpam, ReasonCopyright, ReasonHarassment, ReasonOther:
		return true
	}
	return false
}

type FlagStatus string

const (
	FlagPending  FlagStatus = "pending"
	FlagReviewed FlagStatus = "reviewed"
	FlagApproved FlagStatus = "approved"
	FlagRejected FlagStatus = "rejected"
	FlagResolved FlagStatus = "resolved"
)

func (s FlagStatus) Valid() bool {
	switch s {
	case FlagPending, FlagReviewed, FlagApproved, FlagRejected, FlagResolved:
		return true
	}
	return false
}

type Resolution string

const (
	ResolutionContentRemoved Resolution = "content_removed"
	ResolutionUserWarned     Resolution = "user_warned"
	ResolutionUserSuspended  Resolution = "user_suspended"
	ResolutionUserBanned     Resolution = "user_banned"
	ResolutionNoAction       Resolution = "no_action"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionContentRemoved, ResolutionUserWarned, ResolutionUserSuspended, ResolutionUserBanned, ResolutionNoAction:
		return true
	}
	return false
}

type FlaggedContent struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	ContentType ContentType `gorm:"type:varchar(20);not null;index:idx_flag_content" json:"contentType"`
	ContentID   uint        `gorm:"not null;index:idx_flag_content" json:"contentId"`
	ReportedBy  uint        `gorm:"not null;index" json:"reportedBy"`
	Reason      FlagReason  `gorm:"type:varchar(20);not null" json:"reason"`
	Description string      `gorm:"type:text" json:"description"`
	Status      FlagStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Resolution  *Resolution `gorm:"type:varchar(30)" json:"resolution,omitempty"`
	AdminNotes  string      `gorm:"type:text" json:"adminNotes"`
	ReviewedBy  *uint       `json:"reviewedBy,omitempty"`
	ReviewedAt  *time.Time  `json:"reviewedAt,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}
