// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package log

import "fmt"

// Helper provides the sprintf-style methods the interpreter calls.
type Helper struct {
	logger Logger
}

// NewHelper wraps a Logger.
func NewHelper(logger Logger) *Helper {
	return &Helper{logger: logger}
}

func (h *Helper) Log(level Level, keyvals ...interface{}) {
	h.logger.Log(level, keyvals...) //nolint:errcheck
}

func (h *Helper) Debug(a ...interface{})            { h.Log(LevelDebug, "msg", fmt.Sprint(a...)) }
func (h *Helper) Debugf(f string, a ...interface{}) { h.Log(LevelDebug, "msg", fmt.Sprintf(f, a...)) }
func (h *Helper) Info(a ...interface{})             { h.Log(LevelInfo, "msg", fmt.Sprint(a...)) }
func (h *Helper) Infof(f string, a ...interface{})  { h.Log(LevelInfo, "msg", fmt.Sprintf(f, a...)) }
func (h *Helper) Warn(a ...interface{})             { h.Log(LevelWarn, "msg", fmt.Sprint(a...)) }
func (h *Helper) Warnf(f string, a ...interface{})  { h.Log(LevelWarn, "msg", fmt.Sprintf(f, a...)) }
func (h *Helper) Error(a ...interface{})            { h.Log(LevelError, "msg", fmt.Sprint(a...)) }
func (h *Helper) Errorf(f string, a ...interface{}) { h.Log(LevelError, "msg", fmt.Sprintf(f, a...)) }
