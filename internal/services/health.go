package services

import (
	"fmt"
	"os/exec"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/crowdqueue/crowdqueue/internal/config"
	"github.com/crowdqueue/crowdqueue/internal/utils"
)

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status       string            `json:"status"`
	Database     string            `json:"database"`
	Downloader   string            `json:"downloader"`
	Search       string            `json:"search"`
	Details      map[string]string `json:"details,omitempty"`
	ErrorMessage string            `json:"error,omitempty"`
}

// HealthCheck verifies the database connection, the external downloader
// binary and the search provider's reachability. Only the database is fatal;
// the rest degrade specific features.
func HealthCheck(cfg *config.Config, db *gorm.DB, log *logrus.Logger) HealthCheckResult {
	result := HealthCheckResult{
		Status:  "healthy",
		Details: make(map[string]string),
	}

	sqlDB, err := db.DB()
	if err != nil {
		result.Status = "unhealthy"
		result.Database = "error"
		result.ErrorMessage = fmt.Sprintf("Database connection error: %v", err)
		log.WithError(err).Error("health check failed: database connection")
	} else if err := sqlDB.Ping(); err != nil {
		result.Status = "unhealthy"
		result.Database = "unreachable"
		result.ErrorMessage = fmt.Sprintf("Database ping failed: %v", err)
		log.WithError(err).Error("health check failed: database ping")
	} else {
		result.Database = "ok"
		result.Details["database_type"] = cfg.DBType
		result.Details["database_name"] = cfg.DBDatabase
	}

	if path, err := exec.LookPath(cfg.DownloaderBin); err != nil {
		result.Downloader = "missing"
		result.Details["downloader_error"] = err.Error()
		log.WithError(err).Warn("health check: downloader binary not found")
	} else {
		result.Downloader = "ok"
		result.Details["downloader_path"] = path
	}

	if cfg.YouTubeAPIKey == "" {
		result.Search = "unconfigured"
	} else if err := utils.PingSearchProvider(DefaultYouTubeBaseURL); err != nil {
		result.Search = "unreachable"
		result.Details["search_error"] = err.Error()
		log.WithError(err).Warn("health check: search provider unreachable")
	} else {
		result.Search = "ok"
	}

	return result
}
