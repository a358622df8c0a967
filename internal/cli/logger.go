// Copyright 2025 The Etc2 Authors.
//
// Licensed under the Apache License, Version 2.0 <LICENSE-APACHE or
// https://www.apache.org/licenses/LICENSE-2.0>. This file may not be copied,
// modified, or distributed except according to those terms.
//
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the collaborators the texconv binary needs that
// lib/dtex deliberately stays agnostic of: loading source images from
// disk and adapting a standard log.Logger into the dtex.Logger
// capability interface.
package cli

import (
	"log"

	"github.com/tvspelsfreak/texconv/lib/dtex"
)

// Logger adapts a standard library *log.Logger into dtex.Logger.
// Debugf is only forwarded when verbose is true, matching the original
// tool's -v/--verbose switch; Warnf and Criticalf always print.
type Logger struct {
	out     *log.Logger
	verbose bool
}

// NewLogger returns a Logger writing through out. verbose gates Debugf.
func NewLogger(out *log.Logger, verbose bool) *Logger {
	return &Logger{out: out, verbose: verbose}
}

func (l *Logger) Debugf(format string, args ...any) {
	if !l.verbose {
		return
	}
	l.out.Printf(format, args...)
}

func (l *Logger) Warnf(format string, args ...any) {
	l.out.Printf("[WARNING] "+format, args...)
}

func (l *Logger) Criticalf(format string, args ...any) {
	l.out.Printf("[ERROR] "+format, args...)
}

var _ dtex.Logger = (*Logger)(nil)
