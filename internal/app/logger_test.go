package app

import (
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestConfigureLogging(t *testing.T) {
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	require.NoError(t, ConfigureLogging(ServerConfig{LogLevel: "debug", GinDebug: true}))
	require.Equal(t, gin.DebugMode, gin.Mode())

	require.NoError(t, ConfigureLogging(ServerConfig{}))
	require.Equal(t, gin.ReleaseMode, gin.Mode())
}
