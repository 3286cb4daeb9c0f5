package views

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/gis"
	"github.com/jazijazi/jahadchecker/methods"
	"github.com/jazijazi/jahadchecker/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UploadPelak ingests a zipped polygon shapefile of pelak borders. Every
// feature needs a title and a unique number; the whole file lands in one
// transaction or not at all.
func (uc *UserController) UploadPelak(c *gin.Context) {
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
	titleField := c.DefaultPostForm("title_field", "title")
	numberField := c.DefaultPostForm("number_field", "number")

	workDir, err := uc.Scratch.NewWorkDir()
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	defer os.RemoveAll(workDir)

	zipPath := filepath.Join(workDir, file.Filename)
	if err := c.SaveUploadedFile(file, zipPath); err != nil {
		detail(c, http.StatusInternalServerError, "ذخیره فایل با خطا مواجه شد")
		return
	}

	shpPath, err := gis.UnpackShapefile(zipPath, filepath.Join(workDir, "unpacked"))
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	layer, err := gis.ReadShapefile(shpPath)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	records, err := gis.ValidatePelakLayer(layer, titleField, numberField)
	if err != nil {
		detail(c, http.StatusBadRequest, err.Error())
		return
	}

	var provinceID *int64
	if user.Company != nil {
		provinceID = user.Company.ProvinceID
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		for _, record := range records {
			wkbHex, err := methods.GeomToWKBHex(record.Geometry)
			if err != nil {
				return err
			}
			pelak := map[string]interface{}{
				"title":         record.Title,
				"number":        record.Number,
				"border":        borderExpr(wkbHex, layer.SRID),
				"is_verified":   false,
				"province_id":   provinceID,
				"created_by_id": user.ID,
				"created_at":    now,
			}
			if err := tx.Table("pelak").Create(pelak).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		detail(c, http.StatusBadRequest, "ثبت پلاک ها با خطا مواجه شد؛ احتمالا شماره پلاک تکراری است")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"imported":      len(records),
		"skipped_empty": layer.SkippedEmpty,
	})
}

// borderExpr normalizes an uploaded geometry into the stored form:
// MultiPolygon, 2D, EPSG:4326.
func borderExpr(wkbHex string, srid string) clause.Expr {
	if srid != "" && srid != "4326" {
		if code, err := strconv.Atoi(srid); err == nil {
			return clause.Expr{
				SQL: `ST_Multi(ST_Force2D(ST_Transform(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), ` +
					strconv.Itoa(code) + `), 4326)))`,
				Vars: []interface{}{wkbHex},
			}
		}
	}
	return clause.Expr{
		SQL:  `ST_Multi(ST_Force2D(ST_SetSRID(ST_GeomFromWKB(decode(?, 'hex')), 4326)))`,
		Vars: []interface{}{wkbHex},
	}
}

func (uc *UserController) ListPelaks(c *gin.Context) {
	var items []map[string]interface{}
	err := models.DB.Table("pelak").
		Select(`id, title, number, is_verified, verified_by_id, verified_at, province_id, encode(ST_AsBinary(border), 'hex') AS geom`).
		Order("id").
		Find(&items).Error
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}
	c.JSON(http.StatusOK, methods.MakeGeoJSON(items))
}

// VerifyPelak stamps verified-by and verified-at together.
func (uc *UserController) VerifyPelak(c *gin.Context) {
	uc.setPelakVerification(c, true)
}

// UnverifyPelak clears both verification fields together.
func (uc *UserController) UnverifyPelak(c *gin.Context) {
	uc.setPelakVerification(c, false)
}

func (uc *UserController) setPelakVerification(c *gin.Context, verified bool) {
	user := currentUser(c)
	if user == nil {
		unauthorized(c)
		return
	}
	if !user.IsSuperuser {
		forbidden(c)
		return
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "شناسه پلاک معتبر نیست")
		return
	}

	var pelak models.Pelak
	if err := models.DB.First(&pelak, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			detail(c, http.StatusNotFound, "پلاک مورد نظر یافت نشد")
			return
		}
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	if verified {
		pelak.MarkVerified(user.ID, time.Now())
	} else {
		pelak.ClearVerified()
	}

	err = models.DB.Model(&pelak).Select("is_verified", "verified_by_id", "verified_at").
		Updates(map[string]interface{}{
			"is_verified":    pelak.IsVerified,
			"verified_by_id": pelak.VerifiedByID,
			"verified_at":    pelak.VerifiedAt,
		}).Error
	if err != nil {
		detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": pelak.ID, "is_verified": pelak.IsVerified})
}
