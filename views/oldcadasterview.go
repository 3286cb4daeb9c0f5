package views

import (
	"errors"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/gis"
	"github.com/jazijazi/jahadchecker/models"
	"github.com/jazijazi/jahadchecker/pgimport"
	"gorm.io/gorm"
)

type layerSummary struct {
	Name     string         `json:"name"`
	GeomType string         `json:"geom_type"`
	SRID     string         `json:"srid"`
	Fields   []gis.GDBField `json:"fields"`
}

// InspectOldCadaster unpacks an uploaded geodatabase zip into the scratch
// store and returns its layer inventory plus an opaque scratch id for the
// follow-up materialization call.
func (uc *UserController) InspectOldCadaster(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanUploadPelak() {
		forbidden(c)
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		detail(c, http.StatusBadRequest, "فایلی ارسال نشده است")
		return
	}

	workDir, err := uc.Scratch.NewWorkDir()
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	zipPath := filepath.Join(workDir, file.Filename)
	if err := c.SaveUploadedFile(file, zipPath); err != nil {
		os.RemoveAll(workDir)
		detail(c, http.StatusInternalServerError, "ذخیره فایل با خطا مواجه شد")
		return
	}

	gdbPath, err := gis.UnpackGeodatabase(zipPath, filepath.Join(workDir, "unpacked"))
	if err != nil {
		os.RemoveAll(workDir)
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	layers, err := uc.GDB.ListLayers(gdbPath)
	if err != nil {
		os.RemoveAll(workDir)
		detail(c, http.StatusBadRequest, "خواندن پایگاه داده مکانی با خطا مواجه شد")
		return
	}

	scratchID := uc.Scratch.Put(workDir, gdbPath)

	summaries := make([]layerSummary, 0, len(layers))
	for _, layer := range layers {
		summaries = append(summaries, layerSummary{
			Name:     layer.Name,
			GeomType: layer.GeomType,
			SRID:     layer.SRID,
			Fields:   layer.Fields,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"scratch_id": scratchID,
		"layers":     summaries,
	})
}

type createOldCadasterRequest struct {
	ScratchID string   `json:"scratch_id" binding:"required"`
	Layers    []string `json:"layers" binding:"required"`
}

// CreateOldCadaster materializes the selected layers of a previously
// inspected geodatabase as staging tables and publishes them. A publish
// failure drops the tables created by this request.
func (uc *UserController) CreateOldCadaster(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanUploadPelak() {
		forbidden(c)
		return
	}

	var req createOldCadasterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "بدنه درخواست معتبر نیست")
		return
	}
	if len(req.Layers) == 0 {
		detail(c, http.StatusBadRequest, "هیچ لایه ای انتخاب نشده است")
		return
	}

	gdbPath, err := uc.Scratch.Resolve(req.ScratchID)
	if err != nil {
		detail(c, http.StatusNotFound, err.Error())
		return
	}

	layers, err := uc.GDB.ReadLayers(gdbPath, req.Layers)
	if err != nil {
		detail(c, http.StatusBadRequest, "خواندن پایگاه داده مکانی با خطا مواجه شد")
		return
	}

	userID := user.ID
	var provinceID *int64
	if user.Company != nil {
		provinceID = user.Company.ProvinceID
	}
	datasets, err := pgimport.MaterializeGeodatabase(models.DB, layers, filepath.Base(gdbPath), &userID, provinceID)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	tables := make([]string, 0, len(datasets))
	titles := make([]string, 0, len(datasets))
	for _, dataset := range datasets {
		tables = append(tables, dataset.TableName)
		titles = append(titles, dataset.LayerName)
	}
	if err := uc.Publisher.PublishTables(tables, titles); err != nil {
		log.Printf("Publish failed, dropping staging tables: %v", err)
		for _, dataset := range datasets {
			if err := pgimport.DropStagingTable(models.DB, dataset.TableName); err != nil {
				log.Printf("Failed to drop %s: %v", dataset.TableName, err)
			}
			models.DB.Delete(&models.StagingDataset{}, dataset.ID)
		}
		detail(c, http.StatusBadGateway, "انتشار لایه ها در سرویس نقشه با خطا مواجه شد")
		return
	}

	uc.Scratch.Release(req.ScratchID)
	c.JSON(http.StatusCreated, gin.H{"datasets": datasets})
}

func (uc *UserController) ListOldCadasters(c *gin.Context) {
	var datasets []models.StagingDataset
	query := models.DB.Order("id DESC")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if provinceID := c.Query("province_id"); provinceID != "" {
		query = query.Where("province_id = ?", provinceID)
	}
	if err := query.Find(&datasets).Error; err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	c.JSON(http.StatusOK, datasets)
}

// GetOldCadaster returns the dataset record together with its staging
// table columns for building a mapping form.
func (uc *UserController) GetOldCadaster(c *gin.Context) {
	dataset, ok := uc.loadDataset(c)
	if !ok {
		return
	}

	columns, err := pgimport.TableColumns(models.DB, dataset.TableName)
	if err != nil {
		detail(c, http.StatusInternalServerError, "خواندن ستون های جدول با خطا مواجه شد")
		return
	}
	c.JSON(http.StatusOK, gin.H{"dataset": dataset, "columns": columns})
}

// DeleteOldCadaster drops a not-yet-imported staging dataset: its table,
// its published layer and its record.
func (uc *UserController) DeleteOldCadaster(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanUploadPelak() {
		forbidden(c)
		return
	}

	dataset, ok := uc.loadDataset(c)
	if !ok {
		return
	}
	if dataset.Status == models.StagingMatched {
		detail(c, http.StatusBadRequest, "مجموعه داده وارد شده قابل حذف نیست")
		return
	}

	if err := uc.Publisher.Unpublish(dataset.TableName); err != nil {
		log.Printf("Unpublish of %s failed: %v", dataset.TableName, err)
	}
	if err := pgimport.DropStagingTable(models.DB, dataset.TableName); err != nil {
		log.Printf("Drop of %s failed: %v", dataset.TableName, err)
	}
	if err := models.DB.Delete(&models.StagingDataset{}, dataset.ID).Error; err != nil {
		detail(c, http.StatusInternalServerError, "حذف مجموعه داده با خطا مواجه شد")
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": dataset.ID})
}

type mappingRequest struct {
	Pairs []pgimport.MappingPair `json:"mapping" binding:"required"`
}

// ValidateOldCadasterMapping evaluates a proposed column mapping without
// touching any data.
func (uc *UserController) ValidateOldCadasterMapping(c *gin.Context) {
	dataset, ok := uc.loadDataset(c)
	if !ok {
		return
	}

	var req mappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "بدنه درخواست معتبر نیست")
		return
	}

	sourceCols, err := pgimport.TableColumns(models.DB, dataset.TableName)
	if err != nil {
		detail(c, http.StatusNotFound, err.Error())
		return
	}
	destCols, err := pgimport.TableColumns(models.DB, "cadaster")
	if err != nil {
		detail(c, http.StatusNotFound, err.Error())
		return
	}

	c.JSON(http.StatusOK, pgimport.ValidateMapping(sourceCols, destCols, req.Pairs))
}

type importRequest struct {
	Pairs   []pgimport.MappingPair `json:"mapping" binding:"required"`
	PelakID *int64                 `json:"pelak_id"`
}

// ImportOldCadaster runs the all-or-nothing import of a staging dataset
// into the cadaster table.
func (uc *UserController) ImportOldCadaster(c *gin.Context) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.CanUploadPelak() {
		forbidden(c)
		return
	}

	dataset, ok := uc.loadDataset(c)
	if !ok {
		return
	}

	var req importRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusBadRequest, "بدنه درخواست معتبر نیست")
		return
	}

	result, err := pgimport.ImportStagingDataset(models.DB, pgimport.ImportRequest{
		DatasetID: dataset.ID,
		Pairs:     req.Pairs,
		PelakID:   req.PelakID,
		UserID:    user.ID,
	})
	if err != nil {
		var validationErr *pgimport.ImportValidationError
		switch {
		case errors.As(err, &validationErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"detail":     "داده های ورودی معتبر نیستند",
				"row_errors": validationErr.RowErrors,
				"truncated":  validationErr.Truncated,
			})
		case errors.Is(err, pgimport.ErrAlreadyImported),
			errors.Is(err, pgimport.ErrMappingRejected):
			detail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, pgimport.ErrDatasetNotFound):
			detail(c, http.StatusNotFound, err.Error())
		default:
			log.Printf("Import of dataset %d failed: %v", dataset.ID, err)
			detail(c, http.StatusInternalServerError, "وارد کردن داده ها با خطا مواجه شد")
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

func (uc *UserController) loadDataset(c *gin.Context) (*models.StagingDataset, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "شناسه معتبر نیست")
		return nil, false
	}

	var dataset models.StagingDataset
	if err := models.DB.First(&dataset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "مجموعه داده مورد نظر یافت نشد")
			return nil, false
		}
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return nil, false
	}
	return &dataset, true
}
