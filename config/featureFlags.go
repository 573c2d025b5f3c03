package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// AutoSaveEnabled controls the periodic background save of in-progress invoice
// configurations.
//
// Set via env:
// - AUTO_SAVE_ENABLED=true (default true)
func AutoSaveEnabled() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("AUTO_SAVE_ENABLED")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

// AutoSaveInterval returns the flush interval for the auto-save worker.
//
// Set via env:
// - AUTO_SAVE_INTERVAL_SECONDS (default 30)
func AutoSaveInterval() time.Duration {
	if v := strings.TrimSpace(os.Getenv("AUTO_SAVE_INTERVAL_SECONDS")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return time.Duration(n) * time.Second
		}
	}
	return 30 * time.Second
}

// StrictDispatchImmutability rejects every write against a dispatched invoice
// at the repository layer too, not only in the aggregate mutators.
//
// Set via env:
// - STRICT_DISPATCH_IMMUTABLE=true (default true)
func StrictDispatchImmutability() bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("STRICT_DISPATCH_IMMUTABLE")))
	if v == "" {
		return true
	}
	return v == "1" || v == "true" || v == "yes" || v == "y"
}
