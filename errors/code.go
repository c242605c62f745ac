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

// Package errors provides the small, flat error-code vocabulary of this
// daemon's five failure kinds: protocol framing, input validation, helper
// RPC, I/O, and privilege. Unlike a general-purpose error package, there is
// no parent-chain or pool machinery here. Only the supervisor's socket setup
// and privilege drop return these coded errors; other packages return plain
// wrapped errors or a helper status code.
package errors

import "strconv"

// CodeError classifies a failure the way an HTTP status code classifies a
// response: the numeric value is machine-readable, the label is for logs.
type CodeError uint16

const (
	// UnknownError is the zero value, never intentionally returned.
	UnknownError CodeError = iota

	// ProtocolError covers malformed JSON frames, unknown commands,
	// buffer overflow, and invalid escape sequences (spec.md §7).
	ProtocolError

	// ValidationError covers an interface name or stanza that fails its
	// allow-listed pattern.
	ValidationError

	// HelperError covers a non-zero helper child exit, a spawn failure,
	// or a malformed helper reply.
	HelperError

	// IOError covers unexpected accept/read/write/framing failures.
	IOError

	// PrivilegeError covers failures while resolving the unprivileged user
	// or group, changing the control socket's group, or dropping privileges.
	PrivilegeError
)

var codeLabel = map[CodeError]string{
	UnknownError:    "unknown",
	ProtocolError:   "protocol",
	ValidationError: "validation",
	HelperError:     "helper",
	IOError:         "io",
	PrivilegeError:  "privilege",
}

func (c CodeError) String() string {
	if l, ok := codeLabel[c]; ok {
		return l
	}
	return "code(" + strconv.Itoa(int(c)) + ")"
}
