package app

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/resourcedesk/pkg/logger"
)

// ConfigureLogging initialises the global logger with the provided level, defaulting to info,
// and puts gin in release mode unless debug output was requested.
func ConfigureLogging(server ServerConfig) error {
	level := strings.TrimSpace(server.LogLevel)
	if level == "" {
		level = "info"
	}
	if server.GinDebug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	return logger.InitWithOptions(logger.Options{Level: level, Format: server.LogFormat})
}
