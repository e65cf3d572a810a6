package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AccessDecision 是草稿访问判定结果
type AccessDecision int

const (
	AccessNotFound AccessDecision = iota
	AccessAllow
	AccessDenyUnauthenticated
	AccessDenyForbidden
)

// AccessLevel 表示允许访问时的权限级别
type AccessLevel string

const (
	LevelRead  AccessLevel = "read"
	LevelEdit  AccessLevel = "edit"
	LevelOwner AccessLevel = "owner"
)

// publicReadable 判断公开草稿当前是否可读
func publicReadable(d *model.Draft, now time.Time, enforceExpiry bool) bool {
	if !d.IsPublic {
		return false
	}
	if !enforceExpiry || d.ShareTokenExpires == nil {
		return true
	}
	return now.Before(*d.ShareTokenExpires)
}

// DecideAccess 按顺序判定 viewerID 对草稿的访问权限，viewerID 为 0 表示匿名
func DecideAccess(d *model.Draft, viewerID uint, now time.Time, enforceExpiry bool) (AccessDecision, AccessLevel) {
	if d == nil {
		return AccessNotFound, ""
	}
	if viewerID != 0 && d.OwnerID == viewerID {
		return AccessAllow, LevelOwner
	}
	if publicReadable(d, now, enforceExpiry) {
		return AccessAllow, LevelRead
	}
	if viewerID == 0 {
		return AccessDenyUnauthenticated, ""
	}
	if d.IsSharedWith(viewerID) {
		return AccessAllow, LevelRead
	}
	return AccessDenyForbidden, ""
}

// DraftView 是返回给调用方的草稿及其访问级别
type DraftView struct {
	*model.Draft
	Access AccessLevel `json:"access"`
}

type CreateDraftRequest struct {
	Name         string          `json:"name" binding:"required,max=200"`
	WallData     json.RawMessage `json:"wallData"`
	PreviewImage string          `json:"previewImage"`
	Images       []string        `json:"images"`
}

type UpdateDraftRequest struct {
	Name         *string         `json:"name" binding:"omitempty,max=200"`
	WallData     json.RawMessage `json:"wallData"`
	PreviewImage *string         `json:"previewImage"`
	Images       []string        `json:"images"`
}

// DraftService 处理草稿的增删改查与访问控制
type DraftService struct {
	draftRepo   *repository.DraftRepository
	shareRepo   *repository.SharedDraftRepository
	subRepo     *repository.SubscriptionRepository
	planService *PlanService
}

func NewDraftService(draftRepo *repository.DraftRepository, shareRepo *repository.SharedDraftRepository,
	subRepo *repository.SubscriptionRepository, planService *PlanService) *DraftService {
	return &DraftService{
		draftRepo:   draftRepo,
		shareRepo:   shareRepo,
		subRepo:     subRepo,
		planService: planService,
	}
}

func wallDataOrEmpty(raw json.RawMessage) datatypes.JSON {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON("{}")
	}
	return datatypes.JSON(raw)
}

// checkImageLimit 判断草稿在已有 existing 张图片时能否再添加 adding 张
func checkImageLimit(existing, adding int, limits model.PlanLimits) error {
	limit := limits.ImageUploadsPerDesign
	if limit == model.Unlimited || existing+adding <= limit {
		return nil
	}
	limitRejectionsTotal.WithLabelValues("image").Inc()
	return &LimitExceededError{Resource: "image", CurrentCount: int64(existing), Limit: limit}
}

// Create 在锁定订阅行（没有订阅时锁定用户行）的事务中检查草稿配额并创建草稿
func (s *DraftService) Create(ownerID uint, req CreateDraftRequest) (*model.Draft, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, validationError("draft name is required")
	}
	draft := &model.Draft{
		OwnerID:      ownerID,
		Name:         name,
		WallData:     wallDataOrEmpty(req.WallData),
		PreviewImage: req.PreviewImage,
		Images:       req.Images,
	}
	if draft.Images == nil {
		draft.Images = []string{}
	}

	err := repository.Transaction(func(tx *gorm.DB) error {
		subs := s.subRepo.WithTx(tx)
		drafts := s.draftRepo.WithTx(tx)

		sub, err := subs.FindByUserIDForUpdate(ownerID)
		if err != nil {
			return err
		}
		if sub == nil {
			// 没有订阅行时锁定用户行，同一用户的创建仍然串行
			owner, err := repository.NewUserRepository().WithTx(tx).FindByIDForUpdate(ownerID)
			if err != nil {
				return err
			}
			if owner == nil {
				return fmt.Errorf("user %w", ErrNotFound)
			}
		}
		limits, err := s.planService.LimitsForTx(tx, sub)
		if err != nil {
			return err
		}
		count, err := drafts.CountByOwner(ownerID)
		if err != nil {
			return err
		}
		if !withinLimit(count, limits.DesignsPerMonth) {
			limitRejectionsTotal.WithLabelValues("draft").Inc()
			return &LimitExceededError{Resource: "draft", CurrentCount: count, Limit: limits.DesignsPerMonth}
		}
		if len(draft.Images) > 0 {
			if err := checkImageLimit(0, len(draft.Images), limits); err != nil {
				return err
			}
		}

		if err := drafts.Create(draft); err != nil {
			return err
		}
		return subs.IncrementUsage(ownerID, repository.UsageDraftsCreated, 1)
	})
	if err != nil {
		return nil, err
	}

	draftsCreatedTotal.Inc()
	logger.L.Info("Draft created", zap.Uint("draftID", draft.ID), zap.Uint("ownerID", ownerID))
	return draft, nil
}

// List 返回用户自己的草稿
func (s *DraftService) List(ownerID uint) ([]model.Draft, error) {
	return s.draftRepo.ListByOwner(ownerID)
}

func (s *DraftService) resolve(draft *model.Draft, viewerID uint) (*DraftView, error) {
	now := time.Now()
	decision, level := DecideAccess(draft, viewerID, now, config.GlobalConfig.Sharing.EnforceTokenExpiry)
	switch decision {
	case AccessNotFound:
		return nil, fmt.Errorf("draft %w", ErrNotFound)
	case AccessDenyUnauthenticated:
		return nil, fmt.Errorf("%w: this draft is private", ErrUnauthorized)
	case AccessDenyForbidden:
		return nil, fmt.Errorf("%w: you do not have access to this draft", ErrForbidden)
	}

	if level != LevelOwner && draft.IsSharedWith(viewerID) {
		share, err := s.shareRepo.FindActive(draft.ID, viewerID)
		if err != nil {
			return nil, err
		}
		if share != nil {
			if share.CanEdit {
				level = LevelEdit
			}
			if err := s.shareRepo.RecordAccess(share.ID, now); err != nil {
				logger.L.Warn("Failed to record share access", zap.Uint("shareID", share.ID), zap.Error(err))
			}
		}
	}

	if level != LevelOwner {
		// 分享令牌与接收者列表只对所有者可见
		redacted := *draft
		redacted.ShareToken = nil
		redacted.ShareTokenExpires = nil
		redacted.SharedWith = nil
		draft = &redacted
	}
	return &DraftView{Draft: draft, Access: level}, nil
}

// ResolveDraftAccess 读取草稿并按访问规则判定，viewerID 为 0 表示匿名
func (s *DraftService) ResolveDraftAccess(draftID, viewerID uint) (*DraftView, error) {
	draft, err := s.draftRepo.FindByID(draftID)
	if err != nil {
		return nil, err
	}
	return s.resolve(draft, viewerID)
}

// GetShared 按数字ID或分享令牌读取草稿
func (s *DraftService) GetShared(idOrToken string, viewerID uint) (*DraftView, error) {
	if id, err := strconv.ParseUint(idOrToken, 10, 64); err == nil {
		return s.ResolveDraftAccess(uint(id), viewerID)
	}
	draft, err := s.draftRepo.FindByShareToken(idOrToken)
	if err != nil {
		return nil, err
	}
	return s.resolve(draft, viewerID)
}

// loadOwned 读取草稿并确认 ownerID 是所有者
func loadOwned(drafts *repository.DraftRepository, draftID, ownerID uint, lock bool) (*model.Draft, error) {
	var (
		draft *model.Draft
		err   error
	)
	if lock {
		draft, err = drafts.FindByIDForUpdate(draftID)
	} else {
		draft, err = drafts.FindByID(draftID)
	}
	if err != nil {
		return nil, err
	}
	if draft == nil {
		return nil, fmt.Errorf("draft %w", ErrNotFound)
	}
	if draft.OwnerID != ownerID {
		return nil, fmt.Errorf("%w: only the owner can modify this draft", ErrForbidden)
	}
	return draft, nil
}

// Update 修改草稿内容，仅所有者可操作
func (s *DraftService) Update(draftID, ownerID uint, req UpdateDraftRequest) (*model.Draft, error) {
	err := repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		draft, err := loadOwned(drafts, draftID, ownerID, true)
		if err != nil {
			return err
		}

		fields := map[string]interface{}{}
		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return validationError("draft name cannot be empty")
			}
			fields["name"] = name
		}
		if len(req.WallData) > 0 {
			fields["wall_data"] = wallDataOrEmpty(req.WallData)
		}
		if req.PreviewImage != nil {
			fields["preview_image"] = *req.PreviewImage
		}
		if len(fields) > 0 {
			if err := drafts.UpdateContent(draft.ID, fields); err != nil {
				return err
			}
		}

		if req.Images != nil {
			if len(req.Images) > len(draft.Images) {
				sub, err := s.subRepo.WithTx(tx).FindByUserID(ownerID)
				if err != nil {
					return err
				}
				limits, err := s.planService.LimitsForTx(tx, sub)
				if err != nil {
					return err
				}
				if err := checkImageLimit(len(draft.Images), len(req.Images)-len(draft.Images), limits); err != nil {
					return err
				}
			}
			if err := drafts.SetImages(draft.ID, req.Images); err != nil {
				return err
			}
		}

		// 保持分享记录中冗余的草稿名称一致
		if name, ok := fields["name"]; ok {
			return tx.Model(&model.SharedDraft{}).Where("draft_id = ?", draft.ID).Update("draft_name", name).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.draftRepo.FindByID(draftID)
}

// removeDraft 删除草稿并使其全部分享记录失效，需在事务中调用
func removeDraft(tx *gorm.DB, draftID uint, now time.Time) error {
	if _, err := repository.NewSharedDraftRepository().WithTx(tx).DeactivateForDraft(draftID, now); err != nil {
		return err
	}
	return repository.NewDraftRepository().WithTx(tx).Delete(draftID)
}

// Delete 删除草稿，仅所有者可操作
func (s *DraftService) Delete(draftID, ownerID uint) error {
	err := repository.Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwned(s.draftRepo.WithTx(tx), draftID, ownerID, true); err != nil {
			return err
		}
		return removeDraft(tx, draftID, time.Now())
	})
	if err != nil {
		return err
	}
	logger.L.Info("Draft deleted", zap.Uint("draftID", draftID), zap.Uint("ownerID", ownerID))
	return nil
}
