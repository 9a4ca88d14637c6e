/*
 * gonum.go, part of apdap.
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


package v3

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Matrix is a set of vectors in 3D space, one per row.
// The main container, it must be able to implement any
// gonum interface.
type Matrix struct {
	*mat.Dense
}

// NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d", l, cols), []string{"NewMatrix"}, true}
	}
	r := mat.NewDense(rows, cols, data)
	return &Matrix{r}, nil
}

// Grow returns a new Matrix with the vectors of F followed by n zero vectors.
// F is not modified, but the returned matrix may share F's backing
// storage when there is spare capacity.
func (F *Matrix) Grow(n int) *Matrix {
	if n < 0 {
		panic(ErrShape)
	}
	if n == 0 {
		return F
	}
	r := F.NVecs()
	if r == 0 {
		return Zeros(n)
	}
	g := F.Dense.Grow(n, 0).(*mat.Dense)
	for i := r; i < r+n; i++ {
		g.Set(i, 0, 0)
		g.Set(i, 1, 0)
		g.Set(i, 2, 0)
	}
	return &Matrix{g}
}

//Errors

// Error is the error type of this package. It is the same as chem.Error but
// avoids a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

// PanicMsg is a message used for panics, even though it does satisfy the error interface.
// for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix    = PanicMsg("apdap/v3: A Matrix should have 3 columns")
	ErrShape           = PanicMsg("apdap/v3: Dimension mismatch")
	ErrIndexOutOfRange = PanicMsg("apdap/v3: index out of range")
)
