/**
 * Copyright 2025 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package log is the leveled logger shared by every sheetcoder package.
package log

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Level = logrus.Level

const (
	DebugLevel = logrus.DebugLevel
	InfoLevel  = logrus.InfoLevel
	ErrorLevel = logrus.ErrorLevel
)

var std = newLogger(os.Stderr)

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(InfoLevel)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})
	return l
}

// SetLogLevel changes the level of the package logger.
func SetLogLevel(lv Level) {
	std.SetLevel(lv)
}

// ParseLevel converts a config value such as "debug" into a Level.
func ParseLevel(s string) (Level, error) {
	lv, err := logrus.ParseLevel(s)
	if err != nil {
		return InfoLevel, errors.Errorf("unknown log level %q", s)
	}
	return lv, nil
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func Debug(format string, args ...interface{}) {
	std.Debugf(format, args...)
}

func Info(format string, args ...interface{}) {
	std.Infof(format, args...)
}

func Error(format string, args ...interface{}) {
	std.Errorf(format, args...)
}

// WithField returns an entry carrying a structured key, for call sites that
// log the same context repeatedly (step ids, cursor positions).
func WithField(key string, value interface{}) *logrus.Entry {
	return std.WithField(key, value)
}
