package views

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type createFlagRequest struct {
	Description string     `json:"description"`
	CadasterID  int64      `json:"cadaster_id" binding:"required"`
	Point       [2]float64 `json:"point" binding:"required"`
}

// CreateFlag places a point-shaped observation on a cadaster. The point
// must fall inside the cadaster border, and each nazer or supernazer
// company may flag a cadaster only once.
func (uc *UserController) CreateFlag(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanCreateFlag() {
		forbidden(c)
		return
	}

	var req createFlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "بدنه درخواست معتبر نیست")
		return
	}
	if len(req.Description) > 512 {
		detail(c, http.StatusBadRequest, "توضیحات نباید بیش از ۵۱۲ نویسه باشد")
		return
	}

	var cadaster models.Cadaster
	if err := models.DB.First(&cadaster, req.CadasterID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "رکورد کاداستر یافت نشد")
			return
		}
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	var intersects bool
	err := models.DB.Raw(`
		SELECT ST_Intersects(border, ST_SetSRID(ST_MakePoint(?, ?), 4326))
		FROM cadaster WHERE id = ?
	`, req.Point[0], req.Point[1], req.CadasterID).Scan(&intersects).Error
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	if !intersects {
		detail(c, http.StatusBadRequest, "موقعیت فلگ باید در محدوده کاداستر مربوطه قرار داشته باشد")
		return
	}

	if !user.IsSuperuser && user.Company != nil {
		if user.Company.IsNazer && companyFlagExists(req.CadasterID, "is_nazer") {
			detail(c, http.StatusBadRequest, "فلگ روی این کاداستر قبلا توسط ناظر ثبت شده است")
			return
		}
		if user.Company.IsSupernazer && companyFlagExists(req.CadasterID, "is_supernazer") {
			detail(c, http.StatusBadRequest, "فلگ روی این کاداستر قبلا توسط ناظرعالی ثبت شده است")
			return
		}
	}

	flag := map[string]interface{}{
		"description": req.Description,
		"status":      models.StatusUnchanged,
		"cadaster_id": req.CadasterID,
		"point": clause.Expr{
			SQL:  `ST_SetSRID(ST_MakePoint(?, ?), 4326)`,
			Vars: []interface{}{req.Point[0], req.Point[1]},
		},
		"created_by_id": user.ID,
		"created_at":    time.Now(),
	}
	if err := models.DB.Table("flag").Create(flag).Error; err != nil {
		detail(c, http.StatusInternalServerError, "ثبت فلگ با خطا مواجه شد")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": true})
}

// companyFlagExists reports whether the cadaster already carries a flag
// created by a company with the given role column set.
func companyFlagExists(cadasterID int64, roleColumn string) bool {
	query := `
		SELECT COUNT(*)
		FROM flag f
		JOIN "user" u ON u.id = f.created_by_id
		JOIN company co ON co.id = u.company_id
		WHERE f.cadaster_id = ? AND co.` + roleColumn + ` = true
	`
	var count int64
	models.DB.Raw(query, cadasterID).Scan(&count)
	return count > 0
}

func (uc *UserController) ListFlags(c *gin.Context) {
	query := models.DB.Model(&models.Flag{}).Order("id DESC")
	if cadasterID := c.Query("cadaster_id"); cadasterID != "" {
		query = query.Where("cadaster_id = ?", cadasterID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var flags []models.Flag
	if err := query.Find(&flags).Error; err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	c.JSON(http.StatusOK, flags)
}

// ChangeFlagStatus moves a flag through its lifecycle.
func (uc *UserController) ChangeFlagStatus(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanCreateFlag() {
		forbidden(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "شناسه معتبر نیست")
		return
	}

	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "بدنه درخواست معتبر نیست")
		return
	}
	if !models.ValidFlagStatus(req.Status) {
		detail(c, http.StatusBadRequest, "وضعیت ارسال شده معتبر نیست")
		return
	}

	var flag models.Flag
	if err := models.DB.First(&flag, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "فلگ مورد نظر یافت نشد")
			return
		}
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	if err := models.DB.Model(&flag).Update("status", req.Status).Error; err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           flag.ID,
		"status":       req.Status,
		"status_label": models.FlagStatusLabels[req.Status],
	})
}
