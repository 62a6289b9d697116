package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"powersimdata/internal/api"
	"powersimdata/internal/app"
	"powersimdata/internal/config"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("PSD_CONFIG"), "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to load config")
	}

	if cfg.API.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
		log.SetFormatter(&log.JSONFormatter{})
	}
	if level, err := log.ParseLevel(os.Getenv("LOG_LEVEL")); err == nil {
		log.SetLevel(level)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to set up services")
	}
	defer a.Close()

	router := api.NewRouter(api.Options{
		Grids:          a.Grids,
		GridDataDir:    cfg.GridDataDir,
		Scenarios:      a.Scenarios,
		Infos:          a.Memory,
		AllowedOrigins: cfg.API.AllowedOrigins,
	})

	// Serve the web frontend next to the API when it has been built.
	if _, err := os.Stat(cfg.API.StaticDir); err == nil {
		router.Static("/assets", filepath.Join(cfg.API.StaticDir, "assets"))
		router.StaticFile("/favicon.ico", filepath.Join(cfg.API.StaticDir, "favicon.ico"))
		router.NoRoute(func(c *gin.Context) {
			if strings.HasPrefix(c.Request.URL.Path, "/api") {
				c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
				return
			}
			c.File(filepath.Join(cfg.API.StaticDir, "index.html"))
		})
		log.Infof("Serving static files from %s", cfg.API.StaticDir)
	} else {
		log.Debugf("Static directory %s not found, skipping static file serving", cfg.API.StaticDir)
	}

	addr := fmt.Sprintf(":%s", cfg.API.Port)
	log.Infof("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}
