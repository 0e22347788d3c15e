// logging.go: Package logger.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package cipherkit

import (
	"sync/atomic"

	"go.uber.org/zap"
)

var defaultLogger atomic.Pointer[zap.Logger]

func init() {
	defaultLogger.Store(zap.NewNop())
}

// SetLogger replaces the package default logger used by components created
// without an explicit logger. A nil logger restores the no-op logger.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	defaultLogger.Store(l)
}

// Logger returns the package default logger.
func Logger() *zap.Logger {
	return defaultLogger.Load()
}

// orNop never hands out a nil logger.
func orNop(l *zap.Logger) *zap.Logger {
	if l == nil {
		return Logger()
	}
	return l
}
