// Package utils holds process-level helpers shared by transports and logging.
package utils

import (
	"os"
	"strings"
	"sync"
)

const unknownHost = "unknown"

var (
	host     string
	hostOnce sync.Once
)

// GetHost names this replica in logs and in the x-resolver response header.
// POD_NAME takes precedence over the kernel hostname.
func GetHost() string {
	hostOnce.Do(func() {
		host = resolveHost(os.Getenv("POD_NAME"), os.Hostname)
	})
	return host
}

func resolveHost(override string, hostname func() (string, error)) string {
	if override = strings.TrimSpace(override); override != "" {
		return override
	}
	h, err := hostname()
	if err != nil || h == "" {
		return unknownHost
	}
	return h
}
