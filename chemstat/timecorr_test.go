/*
 * timecorr_test.go, part of apdap.
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

package chemstat

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// direct computes the same correlation as CrossCorrelation, the slow way.
func direct(c1, c2 []float64) []float64 {
	n := len(c1)
	m1, m2 := 0.0, 0.0
	for i := range c1 {
		m1 += c1[i] / float64(n)
		m2 += c2[i] / float64(n)
	}
	s1, s2 := 0.0, 0.0
	for i := range c1 {
		s1 += (c1[i] - m1) * (c1[i] - m1) / float64(n)
		s2 += (c2[i] - m2) * (c2[i] - m2) / float64(n)
	}
	ret := make([]float64, n)
	for k := range ret {
		for i := 0; i+k < n; i++ {
			ret[k] += (c1[i] - m1) * (c2[i+k] - m2)
		}
		ret[k] /= float64(n) * math.Sqrt(s1*s2)
	}
	return ret
}

func TestAutoCorrelation(Te *testing.T) {
	c := make([]float64, 50)
	for i := range c {
		c[i] = math.Sin(float64(i)/3) + 0.1*float64(i%7)
	}
	acf, err := AutoCorrelation(c)
	require.NoError(Te, err)
	require.Len(Te, acf, len(c))
	assert.InDelta(Te, 1.0, acf[0], 1e-9)
	want := direct(c, c)
	for i := range want {
		assert.InDelta(Te, want[i], acf[i], 1e-9, "lag %d", i)
	}
	tau := CorrelationTime(acf)
	assert.Greater(Te, tau, 0.0)
	assert.Less(Te, tau, 50.0)

	//alternating series are anticorrelated at lag 1.
	alt := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	acf, err = AutoCorrelation(alt)
	require.NoError(Te, err)
	assert.Less(Te, acf[1], 0.0)
	assert.Equal(Te, 1.0, CorrelationTime(acf))

	acf, err = AutoCorrelation([]float64{3, 3, 3})
	require.NoError(Te, err)
	assert.Nil(Te, acf)
	assert.True(Te, math.IsInf(CorrelationTime(acf), 1))
}

func TestCrossCorrelation(Te *testing.T) {
	c1 := []float64{0, 1, 0, 0, 2, 0, 1, 0, 0, 0}
	c2 := []float64{0, 0, 1, 0, 0, 2, 0, 1, 0, 0}
	cc, err := CrossCorrelation(c1, c2)
	require.NoError(Te, err)
	want := direct(c1, c2)
	for i := range want {
		assert.InDelta(Te, want[i], cc[i], 1e-9, "lag %d", i)
	}
	//c2 is c1 delayed one frame.
	best := 0
	for i, v := range cc {
		if v > cc[best] {
			best = i
		}
	}
	assert.Equal(Te, 1, best)

	_, err = CrossCorrelation(c1, c2[:3])
	assert.Error(Te, err)
	_, err = CrossCorrelation([]float64{1}, []float64{1})
	assert.Error(Te, err)
}
