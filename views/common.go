package views

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/config"
	"github.com/jazijazi/jahadchecker/geoserver"
	"github.com/jazijazi/jahadchecker/gis"
	"github.com/jazijazi/jahadchecker/models"
	"github.com/jazijazi/jahadchecker/services"
)

// UserController carries the long-lived collaborators every handler needs.
type UserController struct {
	Scratch   *gis.ScratchStore
	GDB       gis.GeoDatabaseReader
	Reports   *services.ReportService
	Publisher *geoserver.Coordinator
}

func NewUserController() *UserController {
	return &UserController{
		Scratch:   gis.NewScratchStore(config.ScratchRoot, time.Duration(config.ScratchTTLMin)*time.Minute),
		GDB:       gis.GogeoReader{},
		Reports:   services.NewReportService(models.DB),
		Publisher: geoserver.NewCoordinator(),
	}
}

// currentUser resolves the authenticated identity forwarded by the reverse
// proxy. Requests without the header run as the seeded local admin.
func currentUser(c *gin.Context) *models.User {
	username := c.GetHeader("X-Username")
	var user models.User
	query := models.DB.Preload("Company")
	if username == "" {
		if err := query.First(&user, 1).Error; err != nil {
			return nil
		}
	} else if err := query.Where("username = ?", username).First(&user).Error; err != nil {
		return nil
	}
	return &user
}

func detail(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{"detail": msg})
}

func forbidden(c *gin.Context) {
	detail(c, http.StatusForbidden, "شما اجازه انجام این عملیات را ندارید")
}

func unauthorized(c *gin.Context) {
	detail(c, http.StatusUnauthorized, "کاربر شناسایی نشد")
}
