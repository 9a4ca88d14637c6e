/*
 * box.go, part of apdap.
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
	"fmt"
	"math"

	v3 "github.com/rmera/apdap/v3"
	"gonum.org/v1/gonum/mat"
)

// minThickness is the width given to degenerate directions of a bounding box.
const minThickness = 1.0

// Box is a (possibly triclinic) simulation cell. The cell vectors a, b and c
// are the rows of the cell matrix. Each direction can be periodic or not.
type Box struct {
	origin [3]float64
	cell   [3][3]float64
	inv    *mat.Dense
	pbc    [3]bool
}

// NewBox returns a box with the given origin, cell vectors (a, b, c) and periodicity.
// It returns an error if the cell vectors are linearly dependent.
func NewBox(origin [3]float64, vectors [3][3]float64, pbc [3]bool) (*Box, error) {
	m := mat.NewDense(3, 3, nil)
	for i := 0; i < 3; i++ {
		m.SetRow(i, vectors[i][:])
	}
	inv := mat.NewDense(3, 3, nil)
	if err := inv.Inverse(m); err != nil {
		return nil, NewError(fmt.Sprintf("singular cell matrix: %s", err), "NewBox", true)
	}
	return &Box{origin: origin, cell: vectors, inv: inv, pbc: pbc}, nil
}

// NewOrthoBox returns an orthogonal box spanning from lo to hi.
func NewOrthoBox(lo, hi [3]float64, pbc [3]bool) (*Box, error) {
	var vecs [3][3]float64
	for i := 0; i < 3; i++ {
		vecs[i][i] = hi[i] - lo[i]
	}
	return NewBox(lo, vecs, pbc)
}

// BoundingBox returns a non-periodic orthogonal box enclosing all the
// vectors in coords. Flat directions get a minimal thickness.
func BoundingBox(coords *v3.Matrix) *Box {
	lo := [3]float64{}
	hi := [3]float64{}
	for i := 0; i < coords.NVecs(); i++ {
		v := coords.Vec(i)
		for j := 0; j < 3; j++ {
			if i == 0 || v[j] < lo[j] {
				lo[j] = v[j]
			}
			if i == 0 || v[j] > hi[j] {
				hi[j] = v[j]
			}
		}
	}
	for j := 0; j < 3; j++ {
		if hi[j]-lo[j] < minThickness {
			c := (hi[j] + lo[j]) / 2
			lo[j] = c - minThickness/2
			hi[j] = c + minThickness/2
		}
	}
	b, err := NewOrthoBox(lo, hi, [3]bool{})
	if err != nil {
		panic(err) //can't happen, all widths are positive.
	}
	return b
}

// Origin returns the origin of the box.
func (B *Box) Origin() [3]float64 { return B.origin }

// Vector returns the ith cell vector (0=a, 1=b, 2=c).
func (B *Box) Vector(i int) [3]float64 { return B.cell[i] }

// Vectors returns all three cell vectors.
func (B *Box) Vectors() [3][3]float64 { return B.cell }

// PBC returns whether the direction i is periodic.
func (B *Box) PBC(i int) bool { return B.pbc[i] }

// Periodic returns true if any direction is periodic.
func (B *Box) Periodic() bool { return B.pbc[0] || B.pbc[1] || B.pbc[2] }

// Orthogonal returns true if all the off-diagonal cell components are zero.
func (B *Box) Orthogonal() bool {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i != j && B.cell[i][j] != 0 {
				return false
			}
		}
	}
	return true
}

// Volume returns the volume of the cell.
func (B *Box) Volume() float64 {
	return math.Abs(dot(B.cell[0], cross(B.cell[1], B.cell[2])))
}

// Widths returns the perpendicular widths of the cell, i.e. the distance
// between each pair of opposite faces.
func (B *Box) Widths() [3]float64 {
	v := B.Volume()
	var w [3]float64
	for d := 0; d < 3; d++ {
		w[d] = v / norm(cross(B.cell[(d+1)%3], B.cell[(d+2)%3]))
	}
	return w
}

// Fractional returns the coordinates of the cartesian point p in the
// basis of the cell vectors, relative to the origin.
func (B *Box) Fractional(p [3]float64) [3]float64 {
	var f [3]float64
	r := [3]float64{p[0] - B.origin[0], p[1] - B.origin[1], p[2] - B.origin[2]}
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			f[j] += r[k] * B.inv.At(k, j)
		}
	}
	return f
}

// Cartesian is the inverse of Fractional.
func (B *Box) Cartesian(f [3]float64) [3]float64 {
	p := B.origin
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			p[j] += f[k] * B.cell[k][j]
		}
	}
	return p
}

// Wrap maps p into the primary cell along the periodic directions.
// Non-periodic directions are left as they are.
func (B *Box) Wrap(p [3]float64) [3]float64 {
	if !B.Periodic() {
		return p
	}
	f := B.Fractional(p)
	for d := 0; d < 3; d++ {
		if !B.pbc[d] {
			continue
		}
		f[d] -= math.Floor(f[d])
		if f[d] >= 1 {
			f[d] = 0
		}
	}
	return B.Cartesian(f)
}

// MinimumImage returns the shortest vector going from p to q, considering
// the periodic images of q.
func (B *Box) MinimumImage(p, q [3]float64) [3]float64 {
	d := [3]float64{q[0] - p[0], q[1] - p[1], q[2] - p[2]}
	if !B.Periodic() {
		return d
	}
	var f [3]float64
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			f[j] += d[k] * B.inv.At(k, j)
		}
		if B.pbc[j] {
			f[j] -= math.Round(f[j])
		}
	}
	var r [3]float64
	for j := 0; j < 3; j++ {
		for k := 0; k < 3; k++ {
			r[j] += f[k] * B.cell[k][j]
		}
	}
	return r
}

// Copy returns a copy of the box.
func (B *Box) Copy() *Box {
	n := *B
	n.inv = mat.DenseCopyOf(B.inv)
	return &n
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func norm(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}
