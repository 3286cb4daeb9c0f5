package views

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/services"
)

func (uc *UserController) CadasterReport(c *gin.Context) {
	provinceID, ok := provinceParam(c)
	if !ok {
		return
	}
	report, err := uc.Reports.CadasterBreakdown(provinceID)
	if err != nil {
		reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (uc *UserController) FlagReport(c *gin.Context) {
	provinceID, ok := provinceParam(c)
	if !ok {
		return
	}
	report, err := uc.Reports.FlagBreakdown(provinceID)
	if err != nil {
		reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func (uc *UserController) StatusDiffReport(c *gin.Context) {
	provinceID, ok := provinceParam(c)
	if !ok {
		return
	}
	report, err := uc.Reports.StatusDiff(provinceID)
	if err != nil {
		reportError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

func provinceParam(c *gin.Context) (int64, bool) {
	provinceID, err := strconv.ParseInt(c.Param("provinceid"), 10, 64)
	if err != nil {
		detail(c, http.StatusBadRequest, "شناسه استان معتبر نیست")
		return 0, false
	}
	return provinceID, true
}

func reportError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrProvinceNotFound) {
		detail(c, http.StatusNotFound, err.Error())
		return
	}
	detail(c, http.StatusInternalServerError, "خطای داخلی سامانه")
}
