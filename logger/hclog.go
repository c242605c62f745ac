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

package logger

import (
	"fmt"
	"io"
	"log"

	"github.com/hashicorp/go-hclog"
)

// NewHashicorpHCLog adapts this package's Logger to hclog.Logger, so a
// third-party component that only knows how to log through hclog shares
// this daemon's single sink instead of writing to its own.
func NewHashicorpHCLog(l Logger) hclog.Logger {
	return &_hclog{l: l}
}

type _hclog struct {
	l Logger
}

func argsToFields(args []interface{}) Fields {
	if len(args) == 0 {
		return nil
	}
	f := make(Fields, len(args)/2)
	for i := 0; i+1 < len(args); i += 2 {
		f[fmt.Sprintf("%v", args[i])] = args[i+1]
	}
	return f
}

func (l *_hclog) Log(level hclog.Level, msg string, args ...interface{}) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		return
	case hclog.Trace, hclog.Debug:
		l.l.Debug(msg, argsToFields(args))
	case hclog.Info:
		l.l.Info(msg, argsToFields(args))
	case hclog.Warn:
		l.l.Warning(msg, argsToFields(args))
	case hclog.Error:
		l.l.Error(msg, argsToFields(args))
	}
}

func (l *_hclog) Trace(msg string, args ...interface{}) { l.l.Debug(msg, argsToFields(args)) }
func (l *_hclog) Debug(msg string, args ...interface{}) { l.l.Debug(msg, argsToFields(args)) }
func (l *_hclog) Info(msg string, args ...interface{})  { l.l.Info(msg, argsToFields(args)) }
func (l *_hclog) Warn(msg string, args ...interface{})  { l.l.Warning(msg, argsToFields(args)) }
func (l *_hclog) Error(msg string, args ...interface{}) { l.l.Error(msg, argsToFields(args)) }

func (l *_hclog) IsTrace() bool { return l.l.GetLevel() >= DebugLevel }
func (l *_hclog) IsDebug() bool { return l.l.GetLevel() >= DebugLevel }
func (l *_hclog) IsInfo() bool  { return l.l.GetLevel() >= InfoLevel }
func (l *_hclog) IsWarn() bool  { return l.l.GetLevel() >= WarnLevel }
func (l *_hclog) IsError() bool { return l.l.GetLevel() >= ErrorLevel }

func (l *_hclog) ImpliedArgs() []interface{} { return nil }

func (l *_hclog) With(args ...interface{}) hclog.Logger { return l }

func (l *_hclog) Name() string { return "networkd" }

func (l *_hclog) Named(name string) hclog.Logger { return l }

func (l *_hclog) ResetNamed(name string) hclog.Logger { return l }

func (l *_hclog) SetLevel(level hclog.Level) {
	switch level {
	case hclog.Off, hclog.NoLevel:
		l.l.SetLevel(NilLevel)
	case hclog.Trace, hclog.Debug:
		l.l.SetLevel(DebugLevel)
	case hclog.Info:
		l.l.SetLevel(InfoLevel)
	case hclog.Warn:
		l.l.SetLevel(WarnLevel)
	case hclog.Error:
		l.l.SetLevel(ErrorLevel)
	}
}

func (l *_hclog) GetLevel() hclog.Level { return hclog.Info }

func (l *_hclog) StandardLogger(opts *hclog.StandardLoggerOptions) *log.Logger {
	return log.New(io.Discard, "", 0)
}

func (l *_hclog) StandardWriter(opts *hclog.StandardLoggerOptions) io.Writer {
	return io.Discard
}
