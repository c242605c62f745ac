/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2021 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

// Package logger wraps github.com/sirupsen/logrus with the small, typed
// field-attachment surface this daemon needs (iface, cmd, helper) instead of
// formatting those values into the message string.
package logger

import (
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Fields attach structured context to one log entry.
type Fields map[string]interface{}

// Logger is the narrow surface every package in this daemon logs through.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warning(msg string, f Fields)
	Error(msg string, f Fields)
	// Fatal logs at FatalLevel and terminates the process, mirroring the
	// die()/perror() fatal paths of the original daemon.
	Fatal(msg string, f Fields)

	SetLevel(lvl Level)
	GetLevel() Level
}

type logger struct {
	lvl atomic.Int32
	lg  *logrus.Logger
}

// New returns a Logger writing to stderr at the given level.
func New(lvl Level) Logger {
	l := &logger{
		lg: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: &logrus.TextFormatter{FullTimestamp: true},
			Hooks:     make(logrus.LevelHooks),
			Level:     lvl.Logrus(),
		},
	}
	l.lvl.Store(int32(lvl))
	return l
}

func (l *logger) SetLevel(lvl Level) {
	l.lvl.Store(int32(lvl))
	l.lg.SetLevel(lvl.Logrus())
}

func (l *logger) GetLevel() Level {
	return Level(l.lvl.Load())
}

func (l *logger) entry(f Fields) *logrus.Entry {
	if len(f) == 0 {
		return logrus.NewEntry(l.lg)
	}
	return l.lg.WithFields(logrus.Fields(f))
}

func (l *logger) Debug(msg string, f Fields)   { l.entry(f).Debug(msg) }
func (l *logger) Info(msg string, f Fields)    { l.entry(f).Info(msg) }
func (l *logger) Warning(msg string, f Fields) { l.entry(f).Warning(msg) }
func (l *logger) Error(msg string, f Fields)   { l.entry(f).Error(msg) }

// Fatal mirrors the original daemon's die(): log, then exit(1). There is no
// cleanup callback here because the reactor's shutdown path (supervisor
// package) is the only caller that needs orderly teardown, and it never
// logs at Fatal level.
func (l *logger) Fatal(msg string, f Fields) { l.entry(f).Fatal(msg) }
