package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jazijazi/jahadchecker/config"
	"github.com/jazijazi/jahadchecker/models"
	"github.com/jazijazi/jahadchecker/routers"
)

func main() {
	models.InitDB()

	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	routers.LandregRouters(r)

	log.Printf("Listening on %s", config.Listen)
	if err := r.Run(config.Listen); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
