/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries the build/release descriptor this daemon embeds
// at link time and surfaces through the "--version" flag and its startup
// log line.
package version

import (
	"fmt"
	"strings"
	"time"
)

type License uint8

const (
	LicenseMIT License = iota
	LicenseApache2
	LicenseGPLv3
)

func (l License) String() string {
	switch l {
	case LicenseApache2:
		return "Apache License 2.0"
	case LicenseGPLv3:
		return "GNU General Public License v3"
	default:
		return "MIT License"
	}
}

// Version describes one build of this daemon.
type Version interface {
	GetPackage() string
	GetDescription() string
	GetBuild() string
	GetRelease() string
	GetAuthor() string
	GetLicenseName() string
	GetTime() time.Time
	GetDate() string
	// GetHeader returns the single-line banner logged at startup and
	// printed by "--version".
	GetHeader() string
}

type version struct {
	license     License
	pkg         string
	description string
	buildTime   time.Time
	buildHash   string
	release     string
	author      string
}

func NewVersion(license License, pkg, description string, buildTime time.Time, buildHash, release, author string) Version {
	return &version{
		license:     license,
		pkg:         pkg,
		description: description,
		buildTime:   buildTime,
		buildHash:   buildHash,
		release:     release,
		author:      author,
	}
}

func (v *version) GetPackage() string     { return v.pkg }
func (v *version) GetDescription() string { return v.description }
func (v *version) GetBuild() string       { return v.buildHash }
func (v *version) GetRelease() string     { return v.release }
func (v *version) GetAuthor() string      { return v.author }
func (v *version) GetLicenseName() string { return v.license.String() }
func (v *version) GetTime() time.Time     { return v.buildTime }

func (v *version) GetDate() string {
	return v.buildTime.Format("2006-01-02")
}

func (v *version) GetHeader() string {
	parts := []string{v.pkg, v.release}
	if v.buildHash != "" {
		parts = append(parts, fmt.Sprintf("(%s, built %s)", v.buildHash, v.GetDate()))
	}
	return strings.Join(parts, " ")
}
