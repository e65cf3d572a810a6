package api

import (
	"net/http"

	"picture-wall/internal/repository"
	"picture-wall/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler 提供装饰品目录，公开接口只返回启用的条目
type CatalogHandler struct {
	catalog *service.CatalogService
}

func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(true)
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CatalogHandler) ListDecors(c *gin.Context) {
	filter := repository.DecorFilter{ActiveOnly: true}
	if raw := c.Query("categoryId"); raw != "" {
		id, err := parseUint(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid categoryId parameter"})
			return
		}
		filter.CategoryID = id
	}
	decors, err := h.catalog.Decors(filter)
	if err != nil {
		respondError(c, err, "list decors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"decors": decors})
}

// ---- 管理接口 ----

func (h *CatalogHandler) AdminListCategories(c *gin.Context) {
	categories, err := h.catalog.Categories(false)
	if err != nil {
		respondError(c, err, "list categories")
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalog.CreateCategory(req)
	if err != nil {
		respondError(c, err, "create category")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"category": category})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.CategoryRequest
	if !bindJSON(c, &req) {
		return
	}
	category, err := h.catalog.UpdateCategory(id, req)
	if err != nil {
		respondError(c, err, "update category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category})
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(id); err != nil {
		respondError(c, err, "delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}

func (h *CatalogHandler) AdminListDecors(c *gin.Context) {
	decors, err := h.catalog.Decors(repository.DecorFilter{})
	if err != nil {
		respondError(c, err, "list decors")
		return
	}
	c.JSON(http.StatusOK, gin.H{"decors": decors})
}

func (h *CatalogHandler) CreateDecor(c *gin.Context) {
	var req service.DecorRequest
	if !bindJSON(c, &req) {
		return
	}
	decor, err := h.catalog.CreateDecor(req)
	if err != nil {
		respondError(c, err, "create decor")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"decor": decor})
}

func (h *CatalogHandler) UpdateDecor(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	var req service.DecorRequest
	if !bindJSON(c, &req) {
		return
	}
	decor, err := h.catalog.UpdateDecor(id, req)
	if err != nil {
		respondError(c, err, "update decor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"decor": decor})
}

func (h *CatalogHandler) DeleteDecor(c *gin.Context) {
	id, ok := getIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteDecor(id); err != nil {
		respondError(c, err, "delete decor")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Decor deleted"})
}
