// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package log provides the minimal leveled-logging surface the
// interpreter logs through. Callers may plug in their own Logger;
// by default messages go to a standard-library logger.
package log

import (
	"fmt"
	stdlog "log"
	"io"
	"sync"
)

// Level is a logger severity level.
type Level int8

const (
	LevelDebug Level = iota - 1
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	}
	return ""
}

// Logger is the interface all log sinks implement.
type Logger interface {
	Log(level Level, keyvals ...interface{}) error
}

type stdLogger struct {
	log  *stdlog.Logger
	pool *sync.Pool
}

// NewStdLogger returns a Logger writing to w.
func NewStdLogger(w io.Writer) Logger {
	return &stdLogger{
		log: stdlog.New(w, "", stdlog.LstdFlags),
		pool: &sync.Pool{
			New: func() interface{} {
				return new([]byte)
			},
		},
	}
}

func (l *stdLogger) Log(level Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}
	buf := l.pool.Get().(*[]byte)
	*buf = append(*buf, level.String()...)
	for i := 0; i < len(keyvals); i += 2 {
		*buf = append(*buf, ' ')
		if i+1 < len(keyvals) {
			*buf = append(*buf, fmt.Sprintf("%v=%v", keyvals[i], keyvals[i+1])...)
		} else {
			*buf = append(*buf, fmt.Sprintf("%v", keyvals[i])...)
		}
	}
	l.log.Output(4, string(*buf)) //nolint:errcheck
	*buf = (*buf)[:0]
	l.pool.Put(buf)
	return nil
}
