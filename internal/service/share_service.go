package service

import (
	"fmt"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"
	"picture-wall/pkg/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ShareService 管理草稿的公开链接和用户间分享
type ShareService struct {
	draftRepo *repository.DraftRepository
	shareRepo *repository.SharedDraftRepository
	userRepo  *repository.UserRepository
	subRepo   *repository.SubscriptionRepository
}

func NewShareService(draftRepo *repository.DraftRepository, shareRepo *repository.SharedDraftRepository,
	userRepo *repository.UserRepository, subRepo *repository.SubscriptionRepository) *ShareService {
	return &ShareService{
		draftRepo: draftRepo,
		shareRepo: shareRepo,
		userRepo:  userRepo,
		subRepo:   subRepo,
	}
}

type ShareDraftRequest struct {
	UserIDs []uint `json:"userIds" binding:"required"`
}

// ShareResult 列出本次新增和已存在的接收者
type ShareResult struct {
	Added         []uint `json:"added"`
	AlreadyShared []uint `json:"alreadyShared"`
}

// PublicLink 是公开草稿的分享令牌
type PublicLink struct {
	DraftID   uint       `json:"draftId"`
	IsPublic  bool       `json:"isPublic"`
	Token     string     `json:"shareToken"`
	ExpiresAt *time.Time `json:"shareTokenExpires"`
}

func tokenTTL() time.Duration {
	if ttl := config.GlobalConfig.Sharing.TokenTTL; ttl > 0 {
		return ttl
	}
	return 7 * 24 * time.Hour
}

// dedupeIDs 去重并保持顺序
func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// newShareRow 创建默认只读权限的分享审计记录
func newShareRow(draft *model.Draft, recipientID uint, at time.Time) *model.SharedDraft {
	return &model.SharedDraft{
		DraftID:    draft.ID,
		DraftName:  draft.Name,
		SharedBy:   draft.OwnerID,
		SharedWith: recipientID,
		SharedAt:   at,
		IsActive:   true,
		CanView:    true,
		CanEdit:    false,
		CanShare:   false,
	}
}

// Share 将草稿分享给一组用户，已在列表中的用户会被跳过
func (s *ShareService) Share(draftID, ownerID uint, userIDs []uint) (*ShareResult, error) {
	recipients := dedupeIDs(userIDs)
	if len(recipients) == 0 {
		return nil, validationError("at least one recipient is required")
	}
	for _, id := range recipients {
		if id == ownerID {
			return nil, validationError("you cannot share a draft with yourself")
		}
	}

	result := &ShareResult{Added: []uint{}, AlreadyShared: []uint{}}
	err := repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		shares := s.shareRepo.WithTx(tx)

		draft, err := loadOwned(drafts, draftID, ownerID, true)
		if err != nil {
			return err
		}

		users, err := s.userRepo.WithTx(tx).FindByIDs(recipients)
		if err != nil {
			return err
		}
		if len(users) != len(recipients) {
			found := make(map[uint]bool, len(users))
			for _, u := range users {
				found[u.ID] = true
			}
			for _, id := range recipients {
				if !found[id] {
					return fmt.Errorf("recipient user %d %w", id, ErrNotFound)
				}
			}
		}

		now := time.Now()
		for _, id := range recipients {
			if draft.IsSharedWith(id) {
				result.AlreadyShared = append(result.AlreadyShared, id)
				continue
			}
			if err := drafts.AddRecipient(draft.ID, id, now); err != nil {
				return err
			}
			// 同一 (草稿, 接收者) 最多一条有效记录
			if _, err := shares.Deactivate(draft.ID, id, now); err != nil {
				return err
			}
			if err := shares.Create(newShareRow(draft, id, now)); err != nil {
				return err
			}
			result.Added = append(result.Added, id)
		}

		if len(result.Added) == 0 {
			return nil
		}
		return s.subRepo.WithTx(tx).IncrementUsage(ownerID, repository.UsageSharesMade, len(result.Added))
	})
	if err != nil {
		return nil, err
	}

	sharesCreatedTotal.Add(float64(len(result.Added)))
	logger.L.Info("Draft shared",
		zap.Uint("draftID", draftID),
		zap.Uint("ownerID", ownerID),
		zap.Uints("added", result.Added))
	return result, nil
}

// SetPublic 公开草稿并返回分享令牌，未过期的令牌会被复用
func (s *ShareService) SetPublic(draftID, ownerID uint) (*PublicLink, error) {
	var link *PublicLink
	err := repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		draft, err := loadOwned(drafts, draftID, ownerID, true)
		if err != nil {
			return err
		}

		now := time.Now()
		if draft.ShareToken != nil && (draft.ShareTokenExpires == nil || now.Before(*draft.ShareTokenExpires)) {
			if !draft.IsPublic {
				if err := drafts.SetSharing(draft.ID, true, draft.ShareToken, draft.ShareTokenExpires); err != nil {
					return err
				}
			}
			link = &PublicLink{DraftID: draft.ID, IsPublic: true, Token: *draft.ShareToken, ExpiresAt: draft.ShareTokenExpires}
			return nil
		}

		token, err := utils.GenerateShareToken()
		if err != nil {
			return err
		}
		expires := now.Add(tokenTTL())
		if err := drafts.SetSharing(draft.ID, true, &token, &expires); err != nil {
			return err
		}
		link = &PublicLink{DraftID: draft.ID, IsPublic: true, Token: token, ExpiresAt: &expires}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.L.Info("Draft made public", zap.Uint("draftID", draftID), zap.Uint("ownerID", ownerID))
	return link, nil
}

// Revoke 撤销公开链接，同时清空接收者列表并使全部分享记录失效
func (s *ShareService) Revoke(draftID, ownerID uint) error {
	var deactivated int64
	err := repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		if _, err := loadOwned(drafts, draftID, ownerID, true); err != nil {
			return err
		}
		if err := drafts.SetSharing(draftID, false, nil, nil); err != nil {
			return err
		}
		if err := drafts.ClearRecipients(draftID); err != nil {
			return err
		}
		n, err := s.shareRepo.WithTx(tx).DeactivateForDraft(draftID, time.Now())
		deactivated = n
		return err
	})
	if err != nil {
		return err
	}
	logger.L.Info("Draft sharing revoked",
		zap.Uint("draftID", draftID),
		zap.Uint("ownerID", ownerID),
		zap.Int64("deactivatedShares", deactivated))
	return nil
}

// RemoveRecipient 将 recipientID 从草稿的接收者中移除，未分享时直接成功。
// 接收者可以移除自己，所有者可以移除任意接收者。
func (s *ShareService) RemoveRecipient(draftID, callerID, recipientID uint) error {
	if recipientID == 0 {
		recipientID = callerID
	}
	return repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		draft, err := drafts.FindByIDForUpdate(draftID)
		if err != nil {
			return err
		}
		if draft == nil {
			return fmt.Errorf("draft %w", ErrNotFound)
		}
		if recipientID != callerID && draft.OwnerID != callerID {
			return fmt.Errorf("%w: only the owner can remove other recipients", ErrForbidden)
		}

		removed, err := drafts.RemoveRecipient(draftID, recipientID)
		if err != nil {
			return err
		}
		if _, err := s.shareRepo.WithTx(tx).Deactivate(draftID, recipientID, time.Now()); err != nil {
			return err
		}
		if removed {
			logger.L.Info("Recipient removed from draft", zap.Uint("draftID", draftID), zap.Uint("recipientID", recipientID))
		}
		return nil
	})
}

// SharedWithMe 返回分享给用户的草稿，分享令牌不对接收者公开
func (s *ShareService) SharedWithMe(userID uint) ([]DraftView, error) {
	drafts, err := s.draftRepo.ListSharedWithUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]DraftView, 0, len(drafts))
	for i := range drafts {
		d := drafts[i]
		d.ShareToken = nil
		d.ShareTokenExpires = nil
		d.SharedWith = nil
		views = append(views, DraftView{Draft: &d, Access: LevelRead})
	}
	return views, nil
}

// SharedByMe 返回用户分享给他人的草稿及接收者
func (s *ShareService) SharedByMe(ownerID uint) ([]model.Draft, error) {
	return s.draftRepo.ListSharedByOwner(ownerID)
}
