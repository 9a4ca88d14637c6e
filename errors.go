/*
 * errors.go, part of apdap.
 *
 * Copyright 2026 Raul Mera A. (raulpuntomeraatusachpuntocl)
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package chem

import (
	"errors"
	"fmt"
	"strings"
)

// CError (Chemical error) is the basic error type of the chem package.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

// NewError returns a CError with the given message, decorated with the caller.
func NewError(msg, caller string, critical bool) CError {
	return CError{msg: msg, deco: []string{caller}, critical: critical}
}

// Error returns a string with an error message.
func (err CError) Error() string {
	if len(err.deco) == 0 {
		return err.msg
	}
	return fmt.Sprintf("%s (%s)", err.msg, strings.Join(err.deco, " < "))
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err CError) Critical() bool { return err.critical }

// ErrDecorate decorates err with the caller's name if it implements
// Error, and returns it. Other errors are wrapped with the caller name.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	var e Error
	if errors.As(err, &e) {
		e.Decorate(caller)
		return err
	}
	return fmt.Errorf("%s: %w", caller, err)
}

// IsLastFrame returns true if err (or any error it wraps) marks the normal
// end of a trajectory.
func IsLastFrame(err error) bool {
	var l LastFrameError
	return errors.As(err, &l)
}
