/*
 * ptm.go, part of apdap.
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

// Package ptm classifies the local structure of each particle by polyhedral
// template matching: the nearest neighbors of a particle are superimposed
// (with optimal rotation and scaling) onto ideal FCC, HCP, BCC, icosahedral
// and simple cubic shells, and the template with the lowest RMSD wins.
package ptm

import (
	"context"
	"fmt"
	"math"
	"sort"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/neighbors"
	v3 "github.com/rmera/apdap/v3"
)

// Name of the frame attributes with the number of particles of each type,
// followed by the name of the type.
const CountsAttribute = "PolyhedralTemplateMatching.counts."

const (
	angleTol = 0.35 //radians
	ratioTol = 0.3
	//assignment scores below this are a perfect match.
	exactScore = 1e-12
)

// Classify returns the structure type of each particle in coords, and the
// RMSD of its best template. Particles that no enabled template could be
// tried on get an RMSD of 0.
func Classify(ctx context.Context, coords *v3.Matrix, box *chem.Box, O *Options) ([]StructureType, []float64, error) {
	if O == nil {
		O = DefaultOptions()
	}
	n := coords.NVecs()
	st := make([]StructureType, n)
	rmsds := make([]float64, n)
	enabled := O.Structures()
	if n == 0 || len(enabled) == 0 {
		return st, rmsds, nil
	}
	maxk := 0
	for _, v := range enabled {
		if k := templates[v].n(); k > maxk {
			maxk = k
		}
	}
	if box == nil {
		box = chem.BoundingBox(coords)
	}
	//the shell radius for maxk neighbors at this density, with some room.
	cut := 1.2 * math.Cbrt(3*float64(maxk+1)*box.Volume()/(4*math.Pi*float64(n)))
	if math.IsNaN(cut) || math.IsInf(cut, 0) || cut <= 0 {
		cut = 1
	}
	finder, err := neighbors.NewFinder(coords, box, cut)
	if err != nil {
		return nil, nil, errDecorate(err, "Classify")
	}
	cutoff := O.RMSDCutoff()
	for i := 0; i < n; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}
		nn := finder.Nearest(i, maxk)
		best := math.Inf(1)
		bestType := Other
		for _, v := range enabled {
			t := templates[v]
			if len(nn) < t.n() {
				continue
			}
			r := match(nn[:t.n()], t)
			if r < best {
				best = r
				bestType = v
			}
		}
		if math.IsInf(best, 1) {
			continue
		}
		rmsds[i] = best
		if cutoff <= 0 || best <= cutoff {
			st[i] = bestType
		}
	}
	return st, rmsds, nil
}

// Frame classifies the particles of F, storing the result in F.Structure
// and F.RMSD, and the number of particles of each type as attributes.
func Frame(ctx context.Context, F *chem.Frame, O *Options) error {
	st, rmsds, err := Classify(ctx, F.Coords, F.Box, O)
	if err != nil {
		return errDecorate(err, fmt.Sprintf("Frame %d", F.Index))
	}
	F.Structure = make([]int, len(st))
	counts := make([]int, len(structureNames))
	for i, v := range st {
		F.Structure[i] = int(v)
		counts[v]++
	}
	F.RMSD = rmsds
	for i, v := range structureNames {
		F.SetAttribute(CountsAttribute+v, float64(counts[i]))
	}
	return nil
}

// Match returns the RMSD between the neighbor shell nb and the ideal
// shell of structure s. nb must have exactly as many neighbors as the
// template. +Inf is returned if no correspondence could be found.
func Match(nb []neighbors.Neighbor, s StructureType) (float64, error) {
	t, ok := templates[s]
	if !ok {
		return 0, Error{fmt.Sprintf("no template for %s", s), []string{"Match"}, true}
	}
	if len(nb) != t.n() {
		return 0, Error{fmt.Sprintf("%s needs %d neighbors, got %d", s, t.n(), len(nb)), []string{"Match"}, true}
	}
	return match(nb, t), nil
}

func match(nb []neighbors.Neighbor, t *template) float64 {
	n := t.n()
	P := make([][3]float64, n)
	mean := 0.0
	for i, v := range nb {
		P[i] = v.Delta
		mean += v.Dist
	}
	mean /= float64(n)
	if mean <= 0 {
		return math.Inf(1)
	}
	for i := range P {
		P[i] = scale(P[i], 1/mean)
	}
	a0, a1, ok := anchors(P)
	if !ok {
		return math.Inf(1)
	}
	ang := angle(P[a0], P[a1])
	ratio := length(P[a1]) / length(P[a0])
	ftest := frame(P[a0], P[a1])
	var bestAssign []int
	bestScore := math.Inf(1)
	rotated := make([][3]float64, n)
	//pairs related by a rotation of the template give the same score,
	//so one of each class is enough.
	for _, ab := range t.pairs {
		a, b := ab[0], ab[1]
		ta, tb := t.vecs[a], t.vecs[b]
		if math.Abs(angle(ta, tb)-ang) > angleTol || math.Abs(t.lengths[b]/t.lengths[a]-ratio) > ratioTol {
			continue
		}
		ftemp := frame(ta, tb)
		for i, p := range P {
			rotated[i] = changeFrame(p, ftest, ftemp)
		}
		assign, score := assignGreedy(rotated, t.vecs)
		if score < bestScore {
			bestScore = score
			bestAssign = assign
		}
		if bestScore <= exactScore {
			break
		}
	}
	if bestAssign == nil {
		return math.Inf(1)
	}
	rmsd, rot := superRMSD(P, t, bestAssign)
	if rot == nil {
		return rmsd
	}
	//one refinement round with the optimal rotation.
	for i, p := range P {
		rotated[i] = rotRow(p, rot)
	}
	assign, _ := assignGreedy(rotated, t.vecs)
	if r2, _ := superRMSD(P, t, assign); r2 < rmsd {
		rmsd = r2
	}
	return rmsd
}

// anchors returns the nearest neighbor and the neighbor closest to it
// which is not collinear with it.
func anchors(P [][3]float64) (int, int, bool) {
	best := -1
	bd := math.Inf(1)
	for j := 1; j < len(P); j++ {
		a := angle(P[0], P[j])
		if a < 0.1 || a > math.Pi-0.1 {
			continue
		}
		if d := length(sub(P[j], P[0])); d < bd {
			bd = d
			best = j
		}
	}
	return 0, best, best > 0
}

// frame returns an orthonormal basis (as rows) built from a and b.
func frame(a, b [3]float64) [3][3]float64 {
	e1 := scale(a, 1/length(a))
	e2 := sub(b, scale(e1, dot(b, e1)))
	e2 = scale(e2, 1/length(e2))
	return [3][3]float64{e1, e2, cross(e1, e2)}
}

// changeFrame expresses p in the from basis and rebuilds it in the to basis.
func changeFrame(p [3]float64, from, to [3][3]float64) [3]float64 {
	var r [3]float64
	for k := 0; k < 3; k++ {
		c := dot(from[k], p)
		r[0] += c * to[k][0]
		r[1] += c * to[k][1]
		r[2] += c * to[k][2]
	}
	return r
}

type pair struct {
	i, j int
	d2   float64
}

// assignGreedy matches each vector of P with one of T, taking the closest
// free pairs first. It returns, for each template vector, the index of
// the matched vector in P, and the sum of the squared distances.
func assignGreedy(P, T [][3]float64) ([]int, float64) {
	n := len(P)
	pairs := make([]pair, 0, n*n)
	for i, p := range P {
		for j, t := range T {
			d := sub(p, t)
			pairs = append(pairs, pair{i, j, dot(d, d)})
		}
	}
	sort.Slice(pairs, func(a, b int) bool { return pairs[a].d2 < pairs[b].d2 })
	assign := make([]int, n)
	for i := range assign {
		assign[i] = -1
	}
	usedP := make([]bool, n)
	score := 0.0
	left := n
	for _, v := range pairs {
		if usedP[v.i] || assign[v.j] >= 0 {
			continue
		}
		usedP[v.i] = true
		assign[v.j] = v.i
		score += v.d2
		left--
		if left == 0 {
			break
		}
	}
	return assign, score
}

// superRMSD superimposes the shell P (plus the central particle) on the
// template t, using the correspondence in assign.
func superRMSD(P [][3]float64, t *template, assign []int) (float64, *[3][3]float64) {
	n := t.n()
	test := v3.Zeros(n + 1)
	templ := v3.Zeros(n + 1)
	for j := 0; j < n; j++ {
		test.SetVec(j+1, P[assign[j]])
		templ.SetVec(j+1, t.vecs[j])
	}
	sp, err := chem.Super(test, templ, true)
	if err != nil {
		return math.Inf(1), nil
	}
	var rot [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			rot[i][j] = sp.Rotation.At(i, j)
		}
	}
	return sp.RMSD, &rot
}

// rotRow applies the rotation R to the row vector p (p*R).
func rotRow(p [3]float64, R *[3][3]float64) [3]float64 {
	var r [3]float64
	for j := 0; j < 3; j++ {
		r[j] = p[0]*R[0][j] + p[1]*R[1][j] + p[2]*R[2][j]
	}
	return r
}
