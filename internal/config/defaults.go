package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

const (
	workers         = 1
	digestAlgorithm = "sha256"
	atomicWrites    = false
	userAgent       = "modsync/1.0"
	maxRetries      = 3
	retryDelay      = 2 * time.Second
	headerTimeout   = 30 * time.Second
)

var (
	destination = filepath.Join(xdg.UserDirs.Download, configFileName)
	historyFile = filepath.Join(xdg.StateHome, configFileName, "history.db")
)
