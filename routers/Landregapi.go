package routers

import (
	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/views"
)

func LandregRouters(r *gin.Engine) {
	UserController := views.NewUserController()
	api := r.Group("/api")
	{
		api.POST("/pelak", UserController.UploadPelak)
		api.GET("/pelak", UserController.ListPelaks)
		api.POST("/pelak/:id/verify", UserController.VerifyPelak)
		api.POST("/pelak/:id/unverify", UserController.UnverifyPelak)

		api.POST("/oldcadaster/inspect", UserController.InspectOldCadaster)
		api.POST("/oldcadaster", UserController.CreateOldCadaster)
		api.GET("/oldcadaster", UserController.ListOldCadasters)
		api.GET("/oldcadaster/:id", UserController.GetOldCadaster)
		api.DELETE("/oldcadaster/:id", UserController.DeleteOldCadaster)
		api.POST("/oldcadaster/:id/mapping/validate", UserController.ValidateOldCadasterMapping)
		api.POST("/oldcadaster/:id/import", UserController.ImportOldCadaster)

		api.GET("/cadaster", UserController.ListCadasters)
		api.GET("/cadaster/:id", UserController.GetCadaster)
		api.PUT("/cadaster/:id/status", UserController.ChangeCadasterStatus)

		api.POST("/flag", UserController.CreateFlag)
		api.GET("/flag", UserController.ListFlags)
		api.PUT("/flag/:id/status", UserController.ChangeFlagStatus)

		api.GET("/report/cadaster/:provinceid", UserController.CadasterReport)
		api.GET("/report/flag/:provinceid", UserController.FlagReport)
		api.GET("/report/diff/:provinceid", UserController.StatusDiffReport)
	}
}
