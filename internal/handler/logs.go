package handler

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"porosity-hmi/internal/logger"
)

var logFiles = map[string]string{
	"info":    logger.InfoFile,
	"warning": logger.WarningFile,
	"error":   logger.ErrorFile,
}

// ShowLogsHandler serves info.log, warning.log or error.log as text/plain.
func ShowLogsHandler(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := logFiles[c.Param("level")]
		if !ok {
			abortWith(c, http.StatusNotFound, "Unknown log level: "+c.Param("level"))
			return
		}

		filePath := filepath.Join(logger.Dir(), name)
		if _, err := os.Stat(filePath); os.IsNotExist(err) {
			abortWith(c, http.StatusNotFound, "Log file not found: "+name)
			return
		}

		c.Header("Content-Type", "text/plain; charset=utf-8")
		c.Header("Cache-Control", "no-cache")
		c.File(filePath)
	}
}

// ClearLogsHandler truncates one log file.
func ClearLogsHandler(logger *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		name, ok := logFiles[c.Param("level")]
		if !ok {
			abortWith(c, http.StatusNotFound, "Unknown log level: "+c.Param("level"))
			return
		}
		if err := logger.CleanLogs(name); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "cleared", "file": name})
	}
}
