package service

import (
	"fmt"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminService 提供管理后台的用户、草稿、分享记录和升级申请管理
type AdminService struct {
	userRepo    *repository.UserRepository
	draftRepo   *repository.DraftRepository
	shareRepo   *repository.SharedDraftRepository
	subRepo     *repository.SubscriptionRepository
	requestRepo *repository.UpgradeRequestRepository
	flagRepo    *repository.FlaggedContentRepository
	planService *PlanService
}

func NewAdminService(userRepo *repository.UserRepository, draftRepo *repository.DraftRepository,
	shareRepo *repository.SharedDraftRepository, subRepo *repository.SubscriptionRepository,
	requestRepo *repository.UpgradeRequestRepository, flagRepo *repository.FlaggedContentRepository,
	planService *PlanService) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		draftRepo:   draftRepo,
		shareRepo:   shareRepo,
		subRepo:     subRepo,
		requestRepo: requestRepo,
		flagRepo:    flagRepo,
		planService: planService,
	}
}

// Dashboard 是管理后台首页的统计数据
type Dashboard struct {
	TotalUsers             int64                  `json:"totalUsers"`
	TotalDrafts            int64                  `json:"totalDrafts"`
	PublicDrafts           int64                  `json:"publicDrafts"`
	ActiveShares           int64                  `json:"activeShares"`
	PendingFlags           int64                  `json:"pendingFlags"`
	PendingUpgradeRequests int64                  `json:"pendingUpgradeRequests"`
	SubscriptionsByPlan    []repository.PlanCount `json:"subscriptionsByPlan"`
}

func (s *AdminService) Dashboard() (*Dashboard, error) {
	var (
		d   Dashboard
		err error
	)
	if d.TotalUsers, err = s.userRepo.Count(); err != nil {
		return nil, err
	}
	if d.TotalDrafts, err = s.draftRepo.Count(); err != nil {
		return nil, err
	}
	if d.PublicDrafts, err = s.draftRepo.CountPublic(); err != nil {
		return nil, err
	}
	if d.ActiveShares, err = s.shareRepo.CountActive(); err != nil {
		return nil, err
	}
	if d.PendingFlags, err = s.flagRepo.CountByStatus(model.FlagPending); err != nil {
		return nil, err
	}
	if d.PendingUpgradeRequests, err = s.requestRepo.CountPending(); err != nil {
		return nil, err
	}
	if d.SubscriptionsByPlan, err = s.subRepo.CountByPlan(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ---- 用户管理 ----

func (s *AdminService) ListUsers(filter repository.UserFilter) ([]model.User, int64, error) {
	return s.userRepo.List(filter)
}

type AdminUserUpdate struct {
	Name       *string `json:"name"`
	Role       *string `json:"role"`
	IsVerified *bool   `json:"isVerified"`
	IsBanned   *bool   `json:"isBanned"`
	// SuspendDays 为 0 时解除暂停
	SuspendDays *int    `json:"suspendDays"`
	Plan        *string `json:"plan"`
}

func (s *AdminService) UpdateUser(id uint, req AdminUserUpdate) (*model.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %w", ErrNotFound)
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, validationError("name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Role != nil {
		if *req.Role != model.RoleUser && *req.Role != model.RoleAdmin {
			return nil, validationError("role must be %q or %q", model.RoleUser, model.RoleAdmin)
		}
		fields["role"] = *req.Role
	}
	if req.IsVerified != nil {
		fields["is_verified"] = *req.IsVerified
	}
	if req.IsBanned != nil {
		fields["is_banned"] = *req.IsBanned
	}
	if req.SuspendDays != nil {
		switch days := *req.SuspendDays; {
		case days < 0:
			return nil, validationError("suspendDays cannot be negative")
		case days == 0:
			fields["suspended_until"] = nil
		default:
			fields["suspended_until"] = time.Now().Add(time.Duration(days) * 24 * time.Hour)
		}
	}
	if req.Plan != nil {
		plan, err := s.planService.Lookup(*req.Plan)
		if err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, fmt.Errorf("plan %q %w", *req.Plan, ErrNotFound)
		}
		if _, err := s.subRepo.AssignPlan(id, plan.Name, time.Now()); err != nil {
			return nil, err
		}
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(id, fields); err != nil {
			return nil, err
		}
	}
	logger.L.Info("User updated by admin", zap.Uint("userID", id), zap.Int("fields", len(fields)))
	return s.userRepo.FindByID(id)
}

// deleteUserTx 删除用户及其草稿、订阅和分享关系
func deleteUserTx(tx *gorm.DB, userID uint, now time.Time) error {
	drafts := repository.NewDraftRepository().WithTx(tx)
	shares := repository.NewSharedDraftRepository().WithTx(tx)

	if _, err := drafts.DeleteByOwner(userID); err != nil {
		return err
	}
	if err := drafts.RemoveRecipientEverywhere(userID); err != nil {
		return err
	}
	if _, err := shares.DeactivateForUser(userID, now); err != nil {
		return err
	}
	if err := repository.NewSubscriptionRepository().WithTx(tx).DeleteByUserID(userID); err != nil {
		return err
	}
	if err := repository.NewUpgradeRequestRepository().WithTx(tx).DeleteByUser(userID); err != nil {
		return err
	}
	return repository.NewUserRepository().WithTx(tx).Delete(userID)
}

// DeleteUser 永久删除用户，管理员不能删除自己
func (s *AdminService) DeleteUser(id, adminID uint) error {
	if id == adminID {
		return validationError("you cannot delete your own account")
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %w", ErrNotFound)
	}
	if err := repository.Transaction(func(tx *gorm.DB) error {
		return deleteUserTx(tx, id, time.Now())
	}); err != nil {
		return err
	}
	logger.L.Info("User deleted by admin", zap.Uint("userID", id), zap.Uint("adminID", adminID))
	return nil
}

// 批量操作类型
const (
	BulkVerify   = "verify"
	BulkUnverify = "unverify"
	BulkBan      = "ban"
	BulkUnban    = "unban"
	BulkDelete   = "delete"
)

type BulkUserRequest struct {
	UserIDs []uint `json:"userIds" binding:"required"`
	Action  string `json:"action" binding:"required"`
}

// BulkUsers 对一组用户执行同一操作，返回受影响的用户数，管理员自己会被跳过
func (s *AdminService) BulkUsers(adminID uint, req BulkUserRequest) (int64, error) {
	ids := make([]uint, 0, len(req.UserIDs))
	for _, id := range dedupeIDs(req.UserIDs) {
		if id != adminID {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return 0, validationError("no users selected")
	}

	var fields map[string]interface{}
	switch req.Action {
	case BulkVerify:
		fields = map[string]interface{}{"is_verified": true}
	case BulkUnverify:
		fields = map[string]interface{}{"is_verified": false}
	case BulkBan:
		fields = map[string]interface{}{"is_banned": true}
	case BulkUnban:
		fields = map[string]interface{}{"is_banned": false}
	case BulkDelete:
		var deleted int64
		err := repository.Transaction(func(tx *gorm.DB) error {
			users, err := s.userRepo.WithTx(tx).FindByIDs(ids)
			if err != nil {
				return err
			}
			now := time.Now()
			for _, u := range users {
				if err := deleteUserTx(tx, u.ID, now); err != nil {
					return err
				}
				deleted++
			}
			return nil
		})
		return deleted, err
	default:
		return 0, validationError("unknown bulk action %q", req.Action)
	}

	affected, err := s.userRepo.UpdateFieldsBulk(ids, fields)
	if err != nil {
		return 0, err
	}
	logger.L.Info("Bulk user update", zap.String("action", req.Action), zap.Int64("affected", affected))
	return affected, nil
}

// ---- 草稿管理 ----

func (s *AdminService) ListDrafts(filter repository.DraftFilter) ([]model.Draft, int64, error) {
	return s.draftRepo.List(filter)
}

// DeleteDraft 删除任意用户的草稿
func (s *AdminService) DeleteDraft(id uint) error {
	draft, err := s.draftRepo.FindByID(id)
	if err != nil {
		return err
	}
	if draft == nil {
		return fmt.Errorf("draft %w", ErrNotFound)
	}
	return repository.Transaction(func(tx *gorm.DB) error {
		return removeDraft(tx, id, time.Now())
	})
}

// ---- 分享记录管理 ----

func (s *AdminService) ListSharedDrafts(filter repository.SharedDraftFilter) ([]model.SharedDraft, int64, error) {
	return s.shareRepo.List(filter)
}

// deactivateShareRow 停用分享记录并从草稿接收者列表中移除，草稿已删除时只停用记录。
// 已失效的记录保持原样，同一接收者可能已有更新的有效记录。
func deactivateShareRow(tx *gorm.DB, share *model.SharedDraft, now time.Time) error {
	if !share.IsActive {
		return nil
	}
	if err := repository.NewSharedDraftRepository().WithTx(tx).DeactivateByID(share.ID, now); err != nil {
		return err
	}
	_, err := repository.NewDraftRepository().WithTx(tx).RemoveRecipient(share.DraftID, share.SharedWith)
	return err
}

func (s *AdminService) findShare(id uint) (*model.SharedDraft, error) {
	share, err := s.shareRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if share == nil {
		return nil, fmt.Errorf("shared draft %w", ErrNotFound)
	}
	return share, nil
}

// RevokeShare 停用一条分享记录
func (s *AdminService) RevokeShare(id uint) (*model.SharedDraft, error) {
	share, err := s.findShare(id)
	if err != nil {
		return nil, err
	}
	if err := repository.Transaction(func(tx *gorm.DB) error {
		return deactivateShareRow(tx, share, time.Now())
	}); err != nil {
		return nil, err
	}
	return s.shareRepo.FindByID(id)
}

// ReactivateShare 重新启用分享记录并恢复接收者列表，同一 (草稿, 接收者) 已有有效记录时冲突
func (s *AdminService) ReactivateShare(id uint) (*model.SharedDraft, error) {
	share, err := s.findShare(id)
	if err != nil {
		return nil, err
	}
	if share.IsActive {
		return share, nil
	}

	err = repository.Transaction(func(tx *gorm.DB) error {
		shares := s.shareRepo.WithTx(tx)
		drafts := s.draftRepo.WithTx(tx)

		active, err := shares.FindActive(share.DraftID, share.SharedWith)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("another active share for this draft and user %w", ErrConflict)
		}
		draft, err := drafts.FindByIDForUpdate(share.DraftID)
		if err != nil {
			return err
		}
		if draft == nil {
			return fmt.Errorf("%w: the draft has been deleted", ErrConflict)
		}
		exists, err := s.userRepo.WithTx(tx).Exists(share.SharedWith)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: the recipient no longer exists", ErrConflict)
		}

		now := time.Now()
		if err := shares.ReactivateByID(share.ID, now); err != nil {
			return err
		}
		if draft.IsSharedWith(share.SharedWith) {
			return nil
		}
		return drafts.AddRecipient(draft.ID, share.SharedWith, now)
	})
	if err != nil {
		return nil, err
	}
	return s.shareRepo.FindByID(id)
}

// DeleteShare 永久删除分享记录
func (s *AdminService) DeleteShare(id uint) error {
	share, err := s.findShare(id)
	if err != nil {
		return err
	}
	return repository.Transaction(func(tx *gorm.DB) error {
		if share.IsActive {
			if _, err := repository.NewDraftRepository().WithTx(tx).RemoveRecipient(share.DraftID, share.SharedWith); err != nil {
				return err
			}
		}
		return s.shareRepo.WithTx(tx).DeleteByID(share.ID)
	})
}

// CleanupShares 删除失效时间早于 now-olderThan 的分享记录
func (s *AdminService) CleanupShares(olderThan time.Duration) (int64, error) {
	deleted, err := s.shareRepo.DeleteInactiveBefore(time.Now().Add(-olderThan))
	if err != nil {
		return 0, err
	}
	logger.L.Info("Inactive shares cleaned up", zap.Int64("deleted", deleted), zap.Duration("olderThan", olderThan))
	return deleted, nil
}

// ---- 升级申请 ----

func (s *AdminService) ListUpgradeRequests(filter repository.UpgradeRequestFilter) ([]model.UpgradeRequest, int64, error) {
	return s.requestRepo.List(filter)
}

type ReviewUpgradeRequest struct {
	Status    string `json:"status" binding:"required"`
	AdminNote string `json:"adminNote"`
}

// ReviewUpgrade 处理升级申请，批准时为用户切换计划
func (s *AdminService) ReviewUpgrade(id, adminID uint, req ReviewUpgradeRequest) (*model.UpgradeRequest, error) {
	if req.Status != model.RequestApproved && req.Status != model.RequestRejected {
		return nil, validationError("status must be %q or %q", model.RequestApproved, model.RequestRejected)
	}
	upgrade, err := s.requestRepo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if upgrade == nil {
		return nil, fmt.Errorf("upgrade request %w", ErrNotFound)
	}
	if upgrade.Status != model.RequestPending {
		return nil, fmt.Errorf("%w: request has already been %s", ErrConflict, upgrade.Status)
	}

	var plan *model.Plan
	if req.Status == model.RequestApproved {
		if plan, err = s.planService.Lookup(upgrade.RequestedPlan); err != nil {
			return nil, err
		}
		if plan == nil {
			return nil, fmt.Errorf("plan %q %w", upgrade.RequestedPlan, ErrNotFound)
		}
	}

	now := time.Now()
	err = repository.Transaction(func(tx *gorm.DB) error {
		if err := s.requestRepo.WithTx(tx).UpdateFields(id, map[string]interface{}{
			"status":      req.Status,
			"admin_note":  strings.TrimSpace(req.AdminNote),
			"reviewed_by": adminID,
			"reviewed_at": now,
		}); err != nil {
			return err
		}
		if plan == nil {
			return nil
		}
		_, err := s.subRepo.WithTx(tx).AssignPlan(upgrade.UserID, plan.Name, now)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.L.Info("Upgrade request reviewed",
		zap.Uint("requestID", id),
		zap.String("status", req.Status),
		zap.Uint("adminID", adminID))
	return s.requestRepo.FindByID(id)
}
