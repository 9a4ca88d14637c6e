/*
 * neighbors.go, part of apdap.
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

// Package neighbors finds the neighbors of particles in periodic (possibly
// triclinic) cells, using a cell list in fractional coordinates. Small
// periodic boxes are handled by visiting as many periodic images as needed.
package neighbors

import (
	"fmt"
	"math"
	"sort"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
)

// Neighbor is a particle (or one of its periodic images) close to another one.
type Neighbor struct {
	Index int        //Index of the neighbor in the frame.
	Delta [3]float64 //Vector from the central particle to the neighbor.
	Dist  float64
}

// Finder answers neighbor queries for a fixed set of coordinates.
type Finder struct {
	box     *chem.Box
	pbc     [3]bool
	vecs    [3][3]float64
	widths  [3]float64
	ncells  [3]int
	pos     [][3]float64 //wrapped cartesian positions
	cellof  []int
	members [][]int
	ntot    int
}

// NewFinder builds a finder for coords in box, with cells sized for
// queries of about cutoff. Queries with other cutoffs are also answered.
func NewFinder(coords *v3.Matrix, box *chem.Box, cutoff float64) (*Finder, error) {
	if cutoff <= 0 || math.IsNaN(cutoff) {
		return nil, Error{fmt.Sprintf("cutoff must be positive, got %g", cutoff), []string{"NewFinder"}, true}
	}
	if box == nil {
		box = chem.BoundingBox(coords)
	}
	n := coords.NVecs()
	f := &Finder{box: box, vecs: box.Vectors(), widths: box.Widths(), ntot: n}
	maxPerDim := int(math.Ceil(math.Cbrt(float64(n)))) + 1
	total := 1
	for d := 0; d < 3; d++ {
		f.pbc[d] = box.PBC(d)
		nc := int(math.Floor(f.widths[d] / cutoff))
		if nc < 1 {
			nc = 1
		}
		if nc > maxPerDim {
			nc = maxPerDim
		}
		f.ncells[d] = nc
		total *= nc
	}
	f.members = make([][]int, total)
	f.pos = make([][3]float64, n)
	f.cellof = make([]int, n)
	for i := 0; i < n; i++ {
		fr := box.Fractional(coords.Vec(i))
		var c [3]int
		for d := 0; d < 3; d++ {
			if f.pbc[d] {
				fr[d] -= math.Floor(fr[d])
				if fr[d] >= 1 {
					fr[d] = 0
				}
			}
			c[d] = int(math.Floor(fr[d] * float64(f.ncells[d])))
			if c[d] < 0 {
				c[d] = 0
			}
			if c[d] >= f.ncells[d] {
				c[d] = f.ncells[d] - 1
			}
		}
		f.pos[i] = box.Cartesian(fr)
		idx := f.cellIndex(c)
		f.cellof[i] = idx
		f.members[idx] = append(f.members[idx], i)
	}
	return f, nil
}

// Len returns the number of particles in the finder.
func (f *Finder) Len() int { return f.ntot }

func (f *Finder) cellIndex(c [3]int) int {
	return (c[0]*f.ncells[1]+c[1])*f.ncells[2] + c[2]
}

func (f *Finder) cellCoords(idx int) [3]int {
	var c [3]int
	c[2] = idx % f.ncells[2]
	idx /= f.ncells[2]
	c[1] = idx % f.ncells[1]
	c[0] = idx / f.ncells[1]
	return c
}

// Within returns all the neighbors of particle i closer than cutoff,
// including periodic images of i itself. The result is sorted by distance.
func (f *Finder) Within(i int, cutoff float64) []Neighbor {
	if i < 0 || i >= f.ntot {
		panic(fmt.Sprintf("neighbors: index %d out of range", i))
	}
	ret := f.within(i, cutoff)
	sortNeighbors(ret)
	return ret
}

func (f *Finder) within(i int, cutoff float64) []Neighbor {
	c := f.cellCoords(f.cellof[i])
	var reach [3]int
	for d := 0; d < 3; d++ {
		reach[d] = int(math.Ceil(cutoff * float64(f.ncells[d]) / f.widths[d]))
		if !f.pbc[d] && reach[d] > f.ncells[d] {
			reach[d] = f.ncells[d]
		}
	}
	center := f.pos[i]
	cut2 := cutoff * cutoff
	ret := make([]Neighbor, 0, 16)
	var o, cc, shift [3]int
	for o[0] = -reach[0]; o[0] <= reach[0]; o[0]++ {
		for o[1] = -reach[1]; o[1] <= reach[1]; o[1]++ {
			for o[2] = -reach[2]; o[2] <= reach[2]; o[2]++ {
				ok := true
				for d := 0; d < 3; d++ {
					v := c[d] + o[d]
					if f.pbc[d] {
						shift[d] = floorDiv(v, f.ncells[d])
						cc[d] = v - shift[d]*f.ncells[d]
						continue
					}
					if v < 0 || v >= f.ncells[d] {
						ok = false
						break
					}
					shift[d] = 0
					cc[d] = v
				}
				if !ok {
					continue
				}
				var img [3]float64
				for d := 0; d < 3; d++ {
					if shift[d] == 0 {
						continue
					}
					s := float64(shift[d])
					img[0] += s * f.vecs[d][0]
					img[1] += s * f.vecs[d][1]
					img[2] += s * f.vecs[d][2]
				}
				self := shift == [3]int{}
				for _, j := range f.members[f.cellIndex(cc)] {
					if j == i && self {
						continue
					}
					p := f.pos[j]
					delta := [3]float64{p[0] + img[0] - center[0], p[1] + img[1] - center[1], p[2] + img[2] - center[2]}
					d2 := delta[0]*delta[0] + delta[1]*delta[1] + delta[2]*delta[2]
					if d2 <= cut2 {
						ret = append(ret, Neighbor{Index: j, Delta: delta, Dist: math.Sqrt(d2)})
					}
				}
			}
		}
	}
	return ret
}

// Nearest returns the k nearest neighbors of particle i, sorted by distance.
// Fewer than k are returned only if the system is not periodic and has
// fewer than k+1 particles.
func (f *Finder) Nearest(i, k int) []Neighbor {
	if k <= 0 {
		return nil
	}
	periodic := f.pbc[0] || f.pbc[1] || f.pbc[2]
	if !periodic && k > f.ntot-1 {
		k = f.ntot - 1
		if k <= 0 {
			return nil
		}
	}
	mw := math.Min(f.widths[0], math.Min(f.widths[1], f.widths[2]))
	cutoff := mw / float64(maxInt(f.ncells[0], maxInt(f.ncells[1], f.ncells[2])))
	//a first guess from the particle density.
	if f.ntot > 0 {
		dens := float64(f.ntot) / f.box.Volume()
		guess := math.Cbrt(3 * float64(k+1) / (4 * math.Pi * dens))
		if guess > 0 && !math.IsInf(guess, 0) {
			cutoff = guess
		}
	}
	for {
		ret := f.within(i, cutoff)
		if len(ret) >= k {
			sortNeighbors(ret)
			return ret[:k]
		}
		cutoff *= 1.5
	}
}

func sortNeighbors(n []Neighbor) {
	sort.Slice(n, func(a, b int) bool {
		if n[a].Dist != n[b].Dist {
			return n[a].Dist < n[b].Dist
		}
		return n[a].Index < n[b].Index
	})
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Error is the error type of the package.
type Error struct {
	message  string
	deco     []string
	critical bool
}

// Error returns a string with an error message.
func (err Error) Error() string { return err.message }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }
