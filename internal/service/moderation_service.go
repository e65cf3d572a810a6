package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"picture-wall/internal/model"
	"picture-wall/internal/repository"
	"picture-wall/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SuspensionPeriod 是 user_suspended 处理的暂停时长
const SuspensionPeriod = 7 * 24 * time.Hour

var errNotApplicable = errors.New("action not applicable to this content type")

// Target 是被举报的内容：草稿、用户或分享记录
type Target interface {
	ContentType() model.ContentType
	// SubjectUserID 返回对内容负责的用户
	SubjectUserID() uint
	// Remove 删除或停用内容，需在事务中调用
	Remove(tx *gorm.DB, now time.Time) error
}

type draftTarget struct{ draft *model.Draft }

func (t draftTarget) ContentType() model.ContentType { return model.ContentDraft }
func (t draftTarget) SubjectUserID() uint            { return t.draft.OwnerID }
func (t draftTarget) Remove(tx *gorm.DB, now time.Time) error {
	return removeDraft(tx, t.draft.ID, now)
}

type userTarget struct{ user *model.User }

func (t userTarget) ContentType() model.ContentType { return model.ContentUser }
func (t userTarget) SubjectUserID() uint            { return t.user.ID }
func (t userTarget) Remove(*gorm.DB, time.Time) error {
	return errNotApplicable
}

type sharedDraftTarget struct{ share *model.SharedDraft }

func (t sharedDraftTarget) ContentType() model.ContentType { return model.ContentSharedDraft }
func (t sharedDraftTarget) SubjectUserID() uint            { return t.share.SharedBy }
func (t sharedDraftTarget) Remove(tx *gorm.DB, now time.Time) error {
	return deactivateShareRow(tx, t.share, now)
}

// ActionResult 记录处理动作的执行结果，失败不会影响举报状态的更新
type ActionResult struct {
	Resolution model.Resolution `json:"resolution"`
	Applied    bool             `json:"applied"`
	Success    bool             `json:"success"`
	Message    string           `json:"message,omitempty"`
}

// flagTransitions 列出每个状态允许进入的状态
var flagTransitions = map[model.FlagStatus][]model.FlagStatus{
	model.FlagPending:  {model.FlagReviewed, model.FlagApproved, model.FlagRejected, model.FlagResolved},
	model.FlagReviewed: {model.FlagResolved},
	model.FlagApproved: {model.FlagResolved},
	model.FlagRejected: {model.FlagResolved},
}

// CanTransition 判断举报能否从 from 进入 to，保持原状态总是允许
func CanTransition(from, to model.FlagStatus) bool {
	if from == to {
		return true
	}
	for _, next := range flagTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type CreateFlagRequest struct {
	ContentType model.ContentType `json:"contentType" binding:"required"`
	ContentID   uint              `json:"contentId" binding:"required"`
	Reason      model.FlagReason  `json:"reason" binding:"required"`
	Description string            `json:"description" binding:"max=2000"`
}

type ReviewFlagRequest struct {
	Status     *model.FlagStatus `json:"status"`
	Resolution *model.Resolution `json:"resolution"`
	AdminNotes *string           `json:"adminNotes"`
}

// ModerationService 处理内容举报与处理
type ModerationService struct {
	flagRepo  *repository.FlaggedContentRepository
	draftRepo *repository.DraftRepository
	userRepo  *repository.UserRepository
	shareRepo *repository.SharedDraftRepository
}

func NewModerationService(flagRepo *repository.FlaggedContentRepository, draftRepo *repository.DraftRepository,
	userRepo *repository.UserRepository, shareRepo *repository.SharedDraftRepository) *ModerationService {
	return &ModerationService{
		flagRepo:  flagRepo,
		draftRepo: draftRepo,
		userRepo:  userRepo,
		shareRepo: shareRepo,
	}
}

// loadTarget 读取被举报的内容，不存在时返回 nil, nil
func (s *ModerationService) loadTarget(contentType model.ContentType, id uint) (Target, error) {
	switch contentType {
	case model.ContentDraft:
		draft, err := s.draftRepo.FindByID(id)
		if err != nil || draft == nil {
			return nil, err
		}
		return draftTarget{draft: draft}, nil
	case model.ContentUser:
		user, err := s.userRepo.FindByID(id)
		if err != nil || user == nil {
			return nil, err
		}
		return userTarget{user: user}, nil
	case model.ContentSharedDraft:
		share, err := s.shareRepo.FindByID(id)
		if err != nil || share == nil {
			return nil, err
		}
		return sharedDraftTarget{share: share}, nil
	}
	return nil, validationError("unknown content type %q", contentType)
}

// Flag 提交举报，同一用户对同一内容只能有一个待处理举报
func (s *ModerationService) Flag(reporterID uint, req CreateFlagRequest) (*model.FlaggedContent, error) {
	if !req.ContentType.Valid() {
		return nil, validationError("unknown content type %q", req.ContentType)
	}
	if !req.Reason.Valid() {
		return nil, validationError("unknown reason %q", req.Reason)
	}

	target, err := s.loadTarget(req.ContentType, req.ContentID)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, fmt.Errorf("%s %d %w", req.ContentType, req.ContentID, ErrNotFound)
	}

	existing, err := s.flagRepo.FindPendingByReporter(req.ContentType, req.ContentID, reporterID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("pending report for this content %w", ErrConflict)
	}

	flag := &model.FlaggedContent{
		ContentType: req.ContentType,
		ContentID:   req.ContentID,
		ReportedBy:  reporterID,
		Reason:      req.Reason,
		Description: strings.TrimSpace(req.Description),
		Status:      model.FlagPending,
	}
	if err := s.flagRepo.Create(flag); err != nil {
		return nil, err
	}
	logger.L.Info("Content flagged",
		zap.String("contentType", string(flag.ContentType)),
		zap.Uint("contentID", flag.ContentID),
		zap.Uint("reportedBy", reporterID))
	return flag, nil
}

func (s *ModerationService) List(filter repository.FlagFilter) ([]model.FlaggedContent, int64, error) {
	return s.flagRepo.List(filter)
}

// Review 更新举报状态，并在给出处理结果时对内容执行对应动作
func (s *ModerationService) Review(flagID, adminID uint, req ReviewFlagRequest) (*model.FlaggedContent, *ActionResult, error) {
	flag, err := s.flagRepo.FindByID(flagID)
	if err != nil {
		return nil, nil, err
	}
	if flag == nil {
		return nil, nil, fmt.Errorf("flagged content %w", ErrNotFound)
	}

	fields := map[string]interface{}{}
	now := time.Now()
	if req.Status != nil {
		next := *req.Status
		if !next.Valid() {
			return nil, nil, validationError("unknown status %q", next)
		}
		if !CanTransition(flag.Status, next) {
			return nil, nil, validationError("cannot move report from %s to %s", flag.Status, next)
		}
		fields["status"] = next
		if next == model.FlagReviewed || next == model.FlagResolved {
			fields["reviewed_by"] = adminID
			fields["reviewed_at"] = now
		}
	}
	if req.Resolution != nil {
		if !req.Resolution.Valid() {
			return nil, nil, validationError("unknown resolution %q", *req.Resolution)
		}
		fields["resolution"] = *req.Resolution
	}
	if req.AdminNotes != nil {
		fields["admin_notes"] = *req.AdminNotes
	}

	if len(fields) > 0 {
		if err := s.flagRepo.UpdateFields(flag.ID, fields); err != nil {
			return nil, nil, err
		}
	}

	var result *ActionResult
	if req.Resolution != nil {
		result = s.applyResolution(flag, *req.Resolution, now)
	}

	updated, err := s.flagRepo.FindByID(flag.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, result, nil
}

// applyResolution 尽力执行处理动作，结果只记录日志，不作为错误返回
func (s *ModerationService) applyResolution(flag *model.FlaggedContent, resolution model.Resolution, now time.Time) *ActionResult {
	result := &ActionResult{Resolution: resolution}

	switch resolution {
	case model.ResolutionUserWarned, model.ResolutionNoAction:
		result.Success = true
	default:
		result.Applied = true
		err := s.execute(flag, resolution, now)
		if err != nil {
			result.Message = err.Error()
		} else {
			result.Success = true
		}
	}

	outcome := "success"
	if !result.Success {
		outcome = "failure"
		logger.L.Warn("Moderation action failed",
			zap.Uint("flagID", flag.ID),
			zap.String("resolution", string(resolution)),
			zap.String("reason", result.Message))
	} else if result.Applied {
		logger.L.Info("Moderation action applied",
			zap.Uint("flagID", flag.ID),
			zap.String("resolution", string(resolution)),
			zap.String("contentType", string(flag.ContentType)),
			zap.Uint("contentID", flag.ContentID))
	}
	moderationActionsTotal.WithLabelValues(string(resolution), outcome).Inc()
	return result
}

func (s *ModerationService) execute(flag *model.FlaggedContent, resolution model.Resolution, now time.Time) error {
	target, err := s.loadTarget(flag.ContentType, flag.ContentID)
	if err != nil {
		return err
	}
	if target == nil {
		return fmt.Errorf("%s %d no longer exists", flag.ContentType, flag.ContentID)
	}

	switch resolution {
	case model.ResolutionContentRemoved:
		return repository.Transaction(func(tx *gorm.DB) error {
			return target.Remove(tx, now)
		})
	case model.ResolutionUserSuspended:
		return s.userRepo.UpdateFields(target.SubjectUserID(), map[string]interface{}{
			"suspended_until": now.Add(SuspensionPeriod),
			"is_verified":     false,
		})
	case model.ResolutionUserBanned:
		return s.userRepo.UpdateFields(target.SubjectUserID(), map[string]interface{}{
			"is_banned":   true,
			"is_verified": false,
		})
	}
	return errNotApplicable
}
