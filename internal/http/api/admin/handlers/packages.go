package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/bonchon-studio/statusrental/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PackageAdminHandler serves package management endpoints.
type PackageAdminHandler struct {
	db *gorm.DB
}

// NewPackageAdminHandler constructs a PackageAdminHandler.
func NewPackageAdminHandler(db *gorm.DB) *PackageAdminHandler {
	return &PackageAdminHandler{db: db}
}

// adminPackageDTO defines the package row shown in the admin panel,
// including inactive entries.
type adminPackageDTO struct {
	ID           uint64    `json:"id"`
	Name         string    `json:"name"`
	DurationDays int       `json:"duration_days"`
	Price        int64     `json:"price"`
	Description  string    `json:"description"`
	Badge        string    `json:"badge"`
	Color        string    `json:"color"`
	IsPopular    bool      `json:"is_popular"`
	IsActive     bool      `json:"is_active"`
	SortOrder    int       `json:"sort_order"`
	CreatedAt    time.Time `json:"created_at"`
}

func toAdminPackageDTO(p models.Package) adminPackageDTO {
	return adminPackageDTO{
		ID:           p.ID,
		Name:         p.Name,
		DurationDays: p.DurationDays,
		Price:        p.Price,
		Description:  p.Description,
		Badge:        p.Badge,
		Color:        p.Color,
		IsPopular:    p.IsPopular,
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
		CreatedAt:    p.CreatedAt,
	}
}

// List returns every package in listing order, inactive included.
func (h *PackageAdminHandler) List(c *gin.Context) {
	var packages []models.Package
	if errFind := h.db.WithContext(c.Request.Context()).
		Order("sort_order ASC").
		Find(&packages).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query packages failed"})
		return
	}
	resp := make([]adminPackageDTO, 0, len(packages))
	for _, pkg := range packages {
		resp = append(resp, toAdminPackageDTO(pkg))
	}
	c.JSON(http.StatusOK, gin.H{"packages": resp})
}

// packageRequest defines the writable package fields.
type packageRequest struct {
	Name         string `json:"name"`
	DurationDays int    `json:"duration_days"`
	Price        *int64 `json:"price"`
	Description  string `json:"description"`
	Badge        string `json:"badge"`
	Color        string `json:"color"`
	IsPopular    bool   `json:"is_popular"`
	IsActive     *bool  `json:"is_active"`
	SortOrder    int    `json:"sort_order"`
}

func (r *packageRequest) validate() string {
	if strings.TrimSpace(r.Name) == "" {
		return "name is required"
	}
	if r.DurationDays <= 0 {
		return "duration_days must be positive"
	}
	if r.Price == nil || *r.Price < 0 {
		return "price must be non-negative"
	}
	return ""
}

// Create adds a package. The (name, duration_days) pair is unique; a
// duplicate offer answers 409.
func (h *PackageAdminHandler) Create(c *gin.Context) {
	var body packageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	pkg := models.Package{
		Name:         strings.TrimSpace(body.Name),
		DurationDays: body.DurationDays,
		Price:        *body.Price,
		Description:  body.Description,
		Badge:        body.Badge,
		Color:        body.Color,
		IsPopular:    body.IsPopular,
		IsActive:     true,
		SortOrder:    body.SortOrder,
	}
	if body.IsActive != nil {
		pkg.IsActive = *body.IsActive
	}
	if pkg.Color == "" {
		pkg.Color = "#3B82F6"
	}

	if errCreate := h.db.WithContext(c.Request.Context()).Create(&pkg).Error; errCreate != nil {
		if errors.Is(errCreate, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(errCreate.Error()), "unique") {
			c.JSON(http.StatusConflict, gin.H{"error": "a package with this name and duration already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create package failed"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"package": toAdminPackageDTO(pkg)})
}

// Update rewrites a package's fields.
func (h *PackageAdminHandler) Update(c *gin.Context) {
	packageID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	var body packageRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if msg := body.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return
	}

	var pkg models.Package
	if errFind := h.db.WithContext(c.Request.Context()).First(&pkg, packageID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query package failed"})
		return
	}

	pkg.Name = strings.TrimSpace(body.Name)
	pkg.DurationDays = body.DurationDays
	pkg.Price = *body.Price
	pkg.Description = body.Description
	pkg.Badge = body.Badge
	if body.Color != "" {
		pkg.Color = body.Color
	}
	pkg.IsPopular = body.IsPopular
	if body.IsActive != nil {
		pkg.IsActive = *body.IsActive
	}
	pkg.SortOrder = body.SortOrder

	if errSave := h.db.WithContext(c.Request.Context()).Save(&pkg).Error; errSave != nil {
		if errors.Is(errSave, gorm.ErrDuplicatedKey) || strings.Contains(strings.ToLower(errSave.Error()), "unique") {
			c.JSON(http.StatusConflict, gin.H{"error": "a package with this name and duration already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update package failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"package": toAdminPackageDTO(pkg)})
}

// Toggle flips a package's visibility.
func (h *PackageAdminHandler) Toggle(c *gin.Context) {
	packageID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package id"})
		return
	}

	var pkg models.Package
	if errFind := h.db.WithContext(c.Request.Context()).First(&pkg, packageID).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "package not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query package failed"})
		return
	}

	if errUpdate := h.db.WithContext(c.Request.Context()).
		Model(&pkg).
		Update("is_active", !pkg.IsActive).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "toggle package failed"})
		return
	}
	pkg.IsActive = !pkg.IsActive

	c.JSON(http.StatusOK, gin.H{"package": toAdminPackageDTO(pkg)})
}
