// Copyright (C) 2019-2025, Lux Partners Limited. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a JSON logger writing to stderr at the given level.
func NewLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", LogLevelKey, level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	cfg.DisableStacktrace = true
	return cfg.Build()
}
