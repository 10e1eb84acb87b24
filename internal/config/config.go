// Package config provides configuration helpers for go-fala commands.
package config

import (
	"fmt"
	"os"
)

// Default server configuration.
const (
	DefaultServerPort = "8000"
	DefaultServerHost = "127.0.0.1"
)

// ServerURL returns the tutor backend HTTP URL from FALA_SERVER_URL.
// Falls back to the local default if not set.
func ServerURL() string {
	if url := os.Getenv("FALA_SERVER_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("http://%s:%s", DefaultServerHost, DefaultServerPort)
}

// WebSocketURL returns the tutor backend websocket URL from FALA_WS_URL.
// Falls back to the local default if not set.
func WebSocketURL() string {
	if url := os.Getenv("FALA_WS_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("ws://%s:%s/ws", DefaultServerHost, DefaultServerPort)
}

// LogLevel returns the log level from FALA_LOG_LEVEL or "info".
func LogLevel() string {
	if lvl := os.Getenv("FALA_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// ListenAddr returns the dev server listen address from FALA_LISTEN.
func ListenAddr() string {
	if addr := os.Getenv("FALA_LISTEN"); addr != "" {
		return addr
	}
	return ":" + DefaultServerPort
}
