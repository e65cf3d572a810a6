package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"picture-wall/internal/repository"
	"picture-wall/pkg/config"
	"picture-wall/pkg/logger"
	"picture-wall/pkg/storage"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultMaxUploadSize 是单个文件的大小上限
const DefaultMaxUploadSize int64 = 30 << 20

// 允许上传的图片类型及其默认扩展名
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// UploadService 以内容哈希保存图片，相同内容只存一份
type UploadService struct {
	store       storage.Storage
	draftRepo   *repository.DraftRepository
	subRepo     *repository.SubscriptionRepository
	planService *PlanService
	maxSize     int64
}

func NewUploadService(store storage.Storage, draftRepo *repository.DraftRepository,
	subRepo *repository.SubscriptionRepository, planService *PlanService) *UploadService {
	maxSize := config.GlobalConfig.Upload.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxUploadSize
	}
	return &UploadService{
		store:       store,
		draftRepo:   draftRepo,
		subRepo:     subRepo,
		planService: planService,
		maxSize:     maxSize,
	}
}

// UploadResult 描述一次上传的结果
type UploadResult struct {
	URL       string   `json:"url"`
	Key       string   `json:"key"`
	Size      int64    `json:"size"`
	MimeType  string   `json:"mimeType"`
	Duplicate bool     `json:"duplicate"`
	DraftID   uint     `json:"draftId,omitempty"`
	Images    []string `json:"images,omitempty"`
}

func (s *UploadService) MaxSize() int64 {
	return s.maxSize
}

// sniffImage 根据内容判断图片类型，返回 MIME 和文件扩展名
func sniffImage(data []byte, filename string) (string, string, error) {
	mimeType := http.DetectContentType(data)
	defaultExt, ok := imageExtensions[mimeType]
	if !ok {
		return "", "", validationError("only image files are allowed (got %s)", mimeType)
	}

	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp":
	default:
		ext = defaultExt
	}
	return mimeType, ext, nil
}

// contentKey 返回内容的 SHA-256 十六进制值加扩展名
func contentKey(data []byte, ext string) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]) + ext
}

// Upload 保存图片；draftID 非 0 时检查草稿所有权与图片配额，并把地址追加到草稿
func (s *UploadService) Upload(ctx context.Context, ownerID, draftID uint, filename string, r io.Reader) (*UploadResult, error) {
	data, err := io.ReadAll(io.LimitReader(r, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, validationError("file exceeds the %dMB limit", s.maxSize>>20)
	}
	if len(data) == 0 {
		return nil, validationError("file is empty")
	}

	mimeType, ext, err := sniffImage(data, filename)
	if err != nil {
		return nil, err
	}

	key := contentKey(data, ext)
	url := s.store.URL(key)

	// 先检查配额，避免为会被拒绝的请求写入文件
	if draftID != 0 {
		if err := s.checkDraftQuota(draftID, ownerID, url); err != nil {
			return nil, err
		}
	}

	exists, err := s.store.Exists(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to check storage: %w", err)
	}
	if !exists {
		if err := s.store.Put(ctx, key, bytes.NewReader(data), int64(len(data)), mimeType); err != nil {
			return nil, fmt.Errorf("failed to store file: %w", err)
		}
		uploadsTotal.WithLabelValues("stored").Inc()
	} else {
		uploadsTotal.WithLabelValues("deduplicated").Inc()
	}

	result := &UploadResult{
		URL:       url,
		Key:       key,
		Size:      int64(len(data)),
		MimeType:  mimeType,
		Duplicate: exists,
	}
	if draftID != 0 {
		images, err := s.attach(draftID, ownerID, result.URL)
		if err != nil {
			return nil, err
		}
		result.DraftID = draftID
		result.Images = images
	}

	logger.L.Info("Image uploaded",
		zap.String("key", key),
		zap.Int64("size", result.Size),
		zap.Bool("duplicate", exists),
		zap.Uint("userID", ownerID),
		zap.Uint("draftID", draftID))
	return result, nil
}

func containsURL(images []string, url string) bool {
	for _, existing := range images {
		if existing == url {
			return true
		}
	}
	return false
}

func (s *UploadService) checkDraftQuota(draftID, ownerID uint, url string) error {
	draft, err := loadOwned(s.draftRepo, draftID, ownerID, false)
	if err != nil {
		return err
	}
	if containsURL(draft.Images, url) {
		return nil
	}
	sub, err := s.subRepo.FindByUserID(ownerID)
	if err != nil {
		return err
	}
	limits, err := s.planService.LimitsFor(sub)
	if err != nil {
		return err
	}
	return checkImageLimit(len(draft.Images), 1, limits)
}

// attach 在锁定草稿行的事务中再次检查配额并追加图片地址，已存在的地址不重复添加
func (s *UploadService) attach(draftID, ownerID uint, url string) ([]string, error) {
	var images []string
	err := repository.Transaction(func(tx *gorm.DB) error {
		drafts := s.draftRepo.WithTx(tx)
		draft, err := loadOwned(drafts, draftID, ownerID, true)
		if err != nil {
			return err
		}
		if containsURL(draft.Images, url) {
			images = draft.Images
			return nil
		}

		sub, err := s.subRepo.WithTx(tx).FindByUserID(ownerID)
		if err != nil {
			return err
		}
		limits, err := s.planService.LimitsForTx(tx, sub)
		if err != nil {
			return err
		}
		if err := checkImageLimit(len(draft.Images), 1, limits); err != nil {
			return err
		}

		images = append(draft.Images, url)
		return drafts.SetImages(draft.ID, images)
	})
	return images, err
}
