/*
 * templates.go, part of apdap.
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

package ptm

import (
	"fmt"
	"math"
	"strings"
)

// StructureType identifies a local crystalline environment.
type StructureType int

const (
	Other StructureType = iota
	FCC
	HCP
	BCC
	ICO
	SC
)

var structureNames = [...]string{"OTHER", "FCC", "HCP", "BCC", "ICO", "SC"}

// AllStructures are the structure types with a template, in id order.
var AllStructures = []StructureType{FCC, HCP, BCC, ICO, SC}

func (s StructureType) String() string {
	if s < 0 || int(s) >= len(structureNames) {
		return fmt.Sprintf("StructureType(%d)", int(s))
	}
	return structureNames[s]
}

// ParseStructure returns the structure type with the given name (case insensitive).
func ParseStructure(name string) (StructureType, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, v := range structureNames {
		if v == n {
			return StructureType(i), nil
		}
	}
	return Other, Error{fmt.Sprintf("unknown structure type %q", name), []string{"ParseStructure"}, true}
}

// template is the ideal neighbor shell of a structure, without the central
// particle, which is always at the origin. Vectors are scaled so their mean
// length is 1.
type template struct {
	kind    StructureType
	vecs    [][3]float64
	lengths []float64
	//pairs of template vectors that can be matched to the two anchors of
	//a shell, one for each class of pairs related by a rotation of the template.
	pairs [][2]int
}

func (t *template) n() int { return len(t.vecs) }

var templates = map[StructureType]*template{
	FCC: newTemplate(FCC, fccShell()),
	HCP: newTemplate(HCP, hcpShell()),
	BCC: newTemplate(BCC, bccShell()),
	ICO: newTemplate(ICO, icoShell()),
	SC:  newTemplate(SC, scShell()),
}

func newTemplate(kind StructureType, vecs [][3]float64) *template {
	mean := 0.0
	for _, v := range vecs {
		mean += length(v)
	}
	mean /= float64(len(vecs))
	t := &template{kind: kind, vecs: make([][3]float64, len(vecs)), lengths: make([]float64, len(vecs))}
	for i, v := range vecs {
		t.vecs[i] = scale(v, 1/mean)
		t.lengths[i] = length(t.vecs[i])
	}
	t.pairs = anchorPairs(t.vecs)
	return t
}

const symTol = 1e-6

// symmetries returns the proper rotations that map vecs onto themselves,
// as the permutations of vecs they produce. The identity is included.
func symmetries(vecs [][3]float64) [][]int {
	n := len(vecs)
	v1 := -1
	for j := 1; j < n; j++ {
		if a := angle(vecs[0], vecs[j]); a > 0.1 && a < math.Pi-0.1 {
			v1 = j
			break
		}
	}
	if v1 < 0 {
		return nil
	}
	from := frame(vecs[0], vecs[v1])
	ang := angle(vecs[0], vecs[v1])
	var perms [][]int
	for x := 0; x < n; x++ {
		if math.Abs(length(vecs[x])-length(vecs[0])) > symTol {
			continue
		}
		for y := 0; y < n; y++ {
			if x == y || math.Abs(length(vecs[y])-length(vecs[v1])) > symTol || math.Abs(angle(vecs[x], vecs[y])-ang) > symTol {
				continue
			}
			to := frame(vecs[x], vecs[y])
			perm := make([]int, n)
			for i, v := range vecs {
				if perm[i] = find(vecs, changeFrame(v, from, to)); perm[i] < 0 {
					perm = nil
					break
				}
			}
			if perm != nil {
				perms = append(perms, perm)
			}
		}
	}
	return perms
}

// find returns the index of the vector of vecs equal to p, or -1.
func find(vecs [][3]float64, p [3]float64) int {
	for i, v := range vecs {
		if d := sub(v, p); dot(d, d) < symTol*symTol {
			return i
		}
	}
	return -1
}

// anchorPairs returns one ordered pair of vectors of vecs for each class
// of pairs that the rotations of vecs map onto each other.
func anchorPairs(vecs [][3]float64) [][2]int {
	n := len(vecs)
	perms := symmetries(vecs)
	var ret [][2]int
	seenA := make([]bool, n)
	for a := 0; a < n; a++ {
		if seenA[a] {
			continue
		}
		seenA[a] = true
		var stab [][]int
		for _, p := range perms {
			seenA[p[a]] = true
			if p[a] == a {
				stab = append(stab, p)
			}
		}
		seenB := make([]bool, n)
		seenB[a] = true
		for b := 0; b < n; b++ {
			if seenB[b] {
				continue
			}
			seenB[b] = true
			for _, p := range stab {
				seenB[p[b]] = true
			}
			ret = append(ret, [2]int{a, b})
		}
	}
	return ret
}

func fccShell() [][3]float64 {
	ret := make([][3]float64, 0, 12)
	for _, a := range []float64{-1, 1} {
		for _, b := range []float64{-1, 1} {
			ret = append(ret, [3]float64{a, b, 0}, [3]float64{a, 0, b}, [3]float64{0, a, b})
		}
	}
	return ret
}

// hcpShell has 6 neighbors in the basal plane and 3 (eclipsed) above and below it.
func hcpShell() [][3]float64 {
	ret := make([][3]float64, 0, 12)
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		ret = append(ret, [3]float64{math.Cos(a), math.Sin(a), 0})
	}
	h := math.Sqrt(2.0 / 3.0)
	r := 1 / math.Sqrt(3)
	for _, z := range []float64{h, -h} {
		for _, deg := range []float64{30, 150, 270} {
			a := deg * math.Pi / 180
			ret = append(ret, [3]float64{r * math.Cos(a), r * math.Sin(a), z})
		}
	}
	return ret
}

// bccShell has the 8 first and the 6 second neighbors.
func bccShell() [][3]float64 {
	ret := make([][3]float64, 0, 14)
	for _, a := range []float64{-0.5, 0.5} {
		for _, b := range []float64{-0.5, 0.5} {
			for _, c := range []float64{-0.5, 0.5} {
				ret = append(ret, [3]float64{a, b, c})
			}
		}
	}
	return append(ret, scShell()...)
}

func icoShell() [][3]float64 {
	phi := (1 + math.Sqrt(5)) / 2
	ret := make([][3]float64, 0, 12)
	for _, a := range []float64{-1, 1} {
		for _, b := range []float64{-phi, phi} {
			ret = append(ret, [3]float64{0, a, b}, [3]float64{a, b, 0}, [3]float64{b, 0, a})
		}
	}
	return ret
}

func scShell() [][3]float64 {
	return [][3]float64{{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1}}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func length(a [3]float64) float64 {
	return math.Sqrt(dot(a, a))
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func angle(a, b [3]float64) float64 {
	c := dot(a, b) / (length(a) * length(b))
	return math.Acos(math.Max(-1, math.Min(1, c)))
}
