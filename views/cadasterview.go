package views

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/methods"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
)

func (uc *UserController) ListCadasters(c *gin.Context) {
	query := models.DB.Table("cadaster").
		Select(`id, unique_code, jaam_code, plak_name, plak_asli, plak_farei, owner_name,
			owner_lastname, project_name, nezarat_type, ownership_kinde, area, status,
			pelak_id, encode(ST_AsBinary(border), 'hex') AS geom`).
		Order("id")

	if pelakID := c.Query("pelak_id"); pelakID != "" {
		query = query.Where("pelak_id = ?", pelakID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var items []map[string]interface{}
	if err := query.Find(&items).Error; err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	c.JSON(http.StatusOK, methods.MakeGeoJSON(items))
}

func (uc *UserController) GetCadaster(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "شناسه معتبر نیست")
		return
	}

	var items []map[string]interface{}
	err = models.DB.Table("cadaster").
		Select(`id, unique_code, jaam_code, plak_name, plak_asli, plak_farei, bakhsh_sabti,
			nahiye_sabti, owner_name, owner_lastname, father_name, national_code, mobile,
			ownership_kinde, consulate_name, nezarat_type, project_name, area, status,
			change_status_date, pelak_id, description,
			encode(ST_AsBinary(border), 'hex') AS geom`).
		Where("id = ?", id).
		Find(&items).Error
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	if len(items) == 0 {
		detail(c, http.StatusNotFound, "رکورد کاداستر یافت نشد")
		return
	}

	collection := methods.MakeGeoJSON(items)
	c.JSON(http.StatusOK, collection.Features[0])
}

type statusRequest struct {
	Status int `json:"status" binding:"required"`
}

// ChangeCadasterStatus moves a cadaster through its status lifecycle.
func (uc *UserController) ChangeCadasterStatus(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanChangeCadasterStatus() {
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
	if !models.ValidStatus(req.Status) {
		detail(c, http.StatusBadRequest, "وضعیت ارسال شده معتبر نیست")
		return
	}

	var cadaster models.Cadaster
	if err := models.DB.First(&cadaster, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "رکورد کاداستر یافت نشد")
			return
		}
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	cadaster.MarkStatusChanged(req.Status, user.ID, time.Now())
	err = models.DB.Model(&cadaster).Select("status", "change_status_date", "change_status_by_id").
		Updates(map[string]interface{}{
			"status":              cadaster.Status,
			"change_status_date":  cadaster.ChangeStatusDate,
			"change_status_by_id": cadaster.ChangeStatusByID,
		}).Error
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           cadaster.ID,
		"status":       req.Status,
		"status_label": models.CadasterStatusLabels[req.Status],
		"changed_at":   cadaster.ChangeStatusDate,
	})
}
