package main

import (
	"context"
	"net/http"

	"food-ordering-api/config"
	"food-ordering-api/realtime"
	"food-ordering-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// The persistence handle is opened here and passed down explicitly;
	// nothing holds it as package state.
	db, err := config.OpenDB(cfg.DBPath)
	if err != nil {
		logrus.Fatalf("failed to open database: %v", err)
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	rdb := config.NewRedis(cfg)
	if rdb != nil {
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			logrus.Fatalf("failed to connect to redis: %v", err)
		}
		defer rdb.Close()
	}

	hub := realtime.NewHub()

	r := gin.Default()

	// CORS for browser clients
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	routes.SetupRoutes(r, db, rdb, hub, cfg)

	logrus.Infof("server running on :%s", cfg.AppPort)
	if err := r.Run(":" + cfg.AppPort); err != nil {
		logrus.Fatalf("failed to start server: %v", err)
	}
}
