package main

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"challanup-backend/services/challan"

	"github.com/gin-gonic/gin"
)

type server struct {
	service challan.Service
}

func newRouter(service challan.Service) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(slogMiddleware())

	s := &server{service: service}
	router.GET("/health", s.health)
	router.POST("/api/process", s.process)
	router.GET("/api/history", s.history)
	router.GET("/api/report", s.report)

	return router
}

func slogMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.InfoContext(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		)
	}
}

func (s *server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type processRequest struct {
	ChallanNo string `json:"challan_no"`
}

func (s *server) process(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing Data"})
		return
	}

	result := s.service.Run(c.Request.Context(), req.ChallanNo)
	status := http.StatusOK
	if result.Status != "success" {
		// the workflow is a remote conversation, so every failure is
		// reported in-band rather than mapped onto HTTP codes
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, result)
}

func (s *server) history(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid limit"})
			return
		}
		limit = parsed
	}

	records, err := s.service.History(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "success", "records": records})
}

func (s *server) report(c *gin.Context) {
	ref := c.Query("ref")
	if ref == "" {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "Missing Data"})
		return
	}

	html, err := s.service.FetchReport(c.Request.Context(), ref)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"status": "error", "message": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
