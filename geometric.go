/*
 * geometric.go, part of apdap.
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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// CenterOfMass returns the center of mass the atoms represented by the coordinates in geometry
// and the masses in mass, and an error. If mass is nil, it calculates the geometric center
func CenterOfMass(geometry *v3.Matrix, mass []float64) ([3]float64, error) {
	var com [3]float64
	if geometry == nil || geometry.NVecs() == 0 {
		return com, NewError("empty matrix to get the center of mass", "CenterOfMass", true)
	}
	gr := geometry.NVecs()
	if mass == nil {
		mass = make([]float64, gr)
		floats.AddConst(1, mass)
	}
	if len(mass) != gr {
		return com, NewError(fmt.Sprintf("%d masses for %d coordinates", len(mass), gr), "CenterOfMass", true)
	}
	total := floats.Sum(mass)
	if total <= 0 {
		return com, NewError("total mass is not positive", "CenterOfMass", true)
	}
	w := mat.NewVecDense(gr, mass)
	r := mat.NewVecDense(3, nil)
	r.MulVec(geometry.Dense.T(), w)
	for i := 0; i < 3; i++ {
		com[i] = r.AtVec(i) / total
	}
	return com, nil
}

// MassCentrate returns a copy of in, centered in the center of mass of in
// and the center of mass used. If mass is nil, the geometric center is used.
func MassCentrate(in *v3.Matrix, mass []float64) (*v3.Matrix, [3]float64, error) {
	com, err := CenterOfMass(in, mass)
	if err != nil {
		return nil, com, ErrDecorate(err, "MassCentrate")
	}
	returned := v3.Zeros(in.NVecs())
	returned.Copy(in)
	returned.SubVec(returned, com)
	return returned, com, nil
}

// RadiusOfGyration returns the mass-weighted radius of gyration of
// geometry around center. If mass is nil, all atoms weight the same.
func RadiusOfGyration(geometry *v3.Matrix, mass []float64, center [3]float64) float64 {
	var sum, total float64
	for i := 0; i < geometry.NVecs(); i++ {
		m := 1.0
		if mass != nil {
			m = mass[i]
		}
		v := geometry.Vec(i)
		d := [3]float64{v[0] - center[0], v[1] - center[1], v[2] - center[2]}
		sum += m * dot(d, d)
		total += m
	}
	if total == 0 {
		return 0
	}
	return math.Sqrt(sum / total)
}

// RMSD returns the RSMD (root of the mean square deviation) for the sets of cartesian
// coordinates in test and template, without any superposition.
func RMSD(test, template *v3.Matrix) (float64, error) {
	tmr, tmc := template.Dims()
	tsr, tsc := test.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 || tmr == 0 {
		return 0, NewError("Ill formed matrices for RMSD calculation", "RMSD", true)
	}
	diff := v3.Zeros(tmr)
	diff.Sub(template, test)
	var ret float64
	for i := 0; i < tmr; i++ {
		v := diff.Vec(i)
		ret += dot(v, v)
	}
	return math.Sqrt(ret / float64(tmr)), nil
}

// Superposition is the result of an optimal superposition of a test set of
// coordinates onto a template.
type Superposition struct {
	//Rotation to be applied to the centered test coordinates, as row vectors (x*R).
	Rotation *mat.Dense
	//Scale applied to the test before the rotation. 1 if no scaling was requested.
	Scale float64
	RMSD  float64
}

// Super finds the rotation (and, if scale is true, the uniform scaling)
// that best superimposes test onto templa, after centering both sets on
// their geometric centers. Reflections are never used.
// The RMSD returned is in the units of templa.
func Super(test, templa *v3.Matrix, scale bool) (*Superposition, error) {
	tmr, tmc := templa.Dims()
	tsr, tsc := test.Dims()
	if tmr != tsr || tmc != 3 || tsc != 3 || tmr == 0 {
		return nil, NewError("Ill-formed matrices", "Super", true)
	}
	ctest, _, err := MassCentrate(test, nil)
	if err != nil {
		return nil, ErrDecorate(err, "Super")
	}
	ctempla, _, err := MassCentrate(templa, nil)
	if err != nil {
		return nil, ErrDecorate(err, "Super")
	}
	var H mat.Dense
	H.Mul(ctest.Dense.T(), ctempla.Dense)
	var svd mat.SVD
	if ok := svd.Factorize(&H, mat.SVDFull); !ok {
		return nil, NewError("SVD factorization failed", "Super", true)
	}
	var U, V mat.Dense
	svd.UTo(&U)
	svd.VTo(&V)
	vals := svd.Values(nil)
	d := 1.0
	if mat.Det(&U)*mat.Det(&V) < 0 {
		d = -1
	}
	D := mat.NewDiagDense(3, []float64{1, 1, d})
	//Rotation for row vectors: x*R = x*U*D*V^T
	var UD, R mat.Dense
	UD.Mul(&U, D)
	R.Mul(&UD, V.T())
	tr := vals[0] + vals[1] + d*vals[2]
	var p2, t2 float64
	for i := 0; i < tmr; i++ {
		p := ctest.Vec(i)
		t := ctempla.Vec(i)
		p2 += dot(p, p)
		t2 += dot(t, t)
	}
	s := 1.0
	var dev float64
	if scale && p2 > 0 {
		s = tr / p2
		dev = t2 - tr*tr/p2
	} else {
		dev = p2 - 2*tr + t2
	}
	if dev < 0 {
		dev = 0
	}
	return &Superposition{Rotation: &R, Scale: s, RMSD: math.Sqrt(dev / float64(tmr))}, nil
}

// Apply returns the centered, scaled and rotated copy of test.
func (S *Superposition) Apply(test *v3.Matrix) (*v3.Matrix, error) {
	ctest, _, err := MassCentrate(test, nil)
	if err != nil {
		return nil, ErrDecorate(err, "Superposition.Apply")
	}
	ret := v3.Zeros(ctest.NVecs())
	ret.Mul(ctest, S.Rotation)
	ret.Dense.Scale(S.Scale, ret.Dense)
	return ret, nil
}
