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

package errors

import "fmt"

// Error wraps an underlying cause with one of the codes above so call
// sites can branch on kind without string-matching.
type Error interface {
	error
	Code() CodeError
	Unwrap() error
}

type wrapped struct {
	code   CodeError
	msg    string
	parent error
}

func New(code CodeError, msg string) Error {
	return &wrapped{code: code, msg: msg}
}

func Wrap(code CodeError, msg string, parent error) Error {
	return &wrapped{code: code, msg: msg, parent: parent}
}

func (e *wrapped) Code() CodeError {
	return e.code
}

func (e *wrapped) Unwrap() error {
	return e.parent
}

func (e *wrapped) Error() string {
	if e.parent == nil {
		return fmt.Sprintf("%s: %s", e.code, e.msg)
	}
	return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.parent.Error())
}

// Is reports whether err carries the given code, the way errors.Is walks a
// chain but specialized to this package's flat, single-parent shape.
func Is(err error, code CodeError) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			if e.Code() == code {
				return true
			}
			err = e.Unwrap()
			continue
		}
		return false
	}
	return false
}
