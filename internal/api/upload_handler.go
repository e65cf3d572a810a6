package api

import (
	"errors"
	"fmt"
	"net/http"

	"picture-wall/internal/service"
	"picture-wall/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead 是表单边界和其他字段允许占用的额外字节
const multipartOverhead int64 = 1 << 20

// UploadHandler 处理图片上传
type UploadHandler struct {
	uploads *service.UploadService
}

func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Upload 接收 multipart 字段 file，可选的 draftId 会把图片追加到该草稿
func (h *UploadHandler) Upload(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	maxSize := h.uploads.MaxSize()
	// 解析表单前限制请求体大小，超大请求不会落到临时文件
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+multipartOverhead)

	// 从表单数据中获取文件
	file, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("file too large, max size is %d MB", maxSize>>20),
			})
			return
		}
		logger.L.Warn("Failed to get file from request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing or invalid file"})
		return
	}

	if file.Size > maxSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("file too large, max size is %d MB", maxSize>>20),
		})
		return
	}

	var draftID uint
	if raw := c.PostForm("draftId"); raw != "" {
		if draftID, err = parseUint(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draftId"})
			return
		}
	}

	src, err := file.Open()
	if err != nil {
		respondError(c, err, "read upload")
		return
	}
	defer src.Close()

	result, err := h.uploads.Upload(c.Request.Context(), userID, draftID, file.Filename, src)
	if err != nil {
		respondError(c, err, "store file")
		return
	}

	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	c.JSON(status, result)
}
