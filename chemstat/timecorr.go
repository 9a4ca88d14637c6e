/*
 * timecorr.go, part of apdap.
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

// Package chemstat computes time correlation functions of per-frame
// quantities along a trajectory.
package chemstat

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

func cmplxMulConj(dst, b []complex128) {
	if len(dst) != len(b) {
		panic(fmt.Sprintf("complex conjugate multiplication of slices: Both slices should have the same len %d, %d", len(dst), len(b)))
	}
	for i, v := range b {
		dst[i] *= cmplx.Conj(v)
	}
}

// CrossCorrelation returns the normalized cross-correlation of c1 and c2,
// which must have the same length, for the lags 0 to len(c1)-1. Lag k
// correlates c1[i] with c2[i+k]. The series are zero-padded, so the
// correlation is not circular. If either series is constant, nil is
// returned.
func CrossCorrelation(c1, c2 []float64) ([]float64, error) {
	n := len(c1)
	if n != len(c2) {
		return nil, fmt.Errorf("series of different lengths: %d and %d", n, len(c2))
	}
	if n < 2 {
		return nil, fmt.Errorf("at least 2 points are needed for a correlation, got %d", n)
	}
	c1mean, c1std := stat.PopMeanStdDev(c1, nil)
	c2mean, c2std := stat.PopMeanStdDev(c2, nil)
	if c1std == 0 || c2std == 0 {
		return nil, nil
	}
	c1pad := make([]complex128, 2*n)
	c2pad := make([]complex128, 2*n)
	for i, v := range c1 {
		c1pad[i] = complex(v-c1mean, 0)
		c2pad[i] = complex(c2[i]-c2mean, 0)
	}
	f := fourier.NewCmplxFFT(len(c1pad))
	f.Coefficients(c1pad, c1pad)
	f.Coefficients(c2pad, c2pad)
	//conj(C1)*C2 gives sum_i c1[i]*c2[i+k] at index k.
	cmplxMulConj(c2pad, c1pad)
	f.Sequence(c2pad, c2pad)
	ret := make([]float64, n)
	scale := 1 / (float64(len(c2pad)) * c1std * c2std * float64(n))
	for i := range ret {
		ret[i] = real(c2pad[i]) * scale
	}
	return ret, nil
}

// AutoCorrelation returns the normalized autocorrelation of c for the
// lags 0 to len(c)-1, so the first value is 1. nil is returned for a
// constant series.
func AutoCorrelation(c []float64) ([]float64, error) {
	return CrossCorrelation(c, c)
}

// CorrelationTime returns the first lag at which the correlation
// function acf drops below 1/e, or +Inf if it never does.
func CorrelationTime(acf []float64) float64 {
	for i, v := range acf {
		if v < 1/math.E {
			return float64(i)
		}
	}
	return math.Inf(1)
}
