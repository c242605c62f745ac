/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package perm wraps os.FileMode with octal-string parsing, trimmed to the
// single use this daemon has for it: the control socket's permission bits.
package perm

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type Perm os.FileMode

// Parse accepts an octal permission string such as "0660".
func Parse(s string) (Perm, error) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`)

	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid permission %q: %w", s, err)
	}

	return Perm(v), nil
}

func ParseFileMode(m os.FileMode) Perm {
	return Perm(m)
}

func (p Perm) FileMode() os.FileMode {
	return os.FileMode(p)
}

func (p Perm) String() string {
	return fmt.Sprintf("%04o", uint32(p))
}
