/*
 * v3_test.go, part of apdap.
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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMatrixRejectsRaggedData(Te *testing.T) {
	_, err := NewMatrix([]float64{1, 2, 3, 4})
	assert.Error(Te, err)
	_, err = NewMatrix(nil)
	assert.Error(Te, err)
}

func TestVecs(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	assert.Equal(Te, 2, A.NVecs())
	assert.Equal(Te, [3]float64{4, 5, 6}, A.Vec(1))
	A.SetVec(0, [3]float64{7, 8, 9})
	assert.Equal(Te, 8.0, A.At(0, 1))
	assert.Panics(Te, func() { A.Vec(2) })
	assert.Panics(Te, func() { A.SetVec(-1, [3]float64{}) })
}

func TestSubVec(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	B := Zeros(2)
	B.SubVec(A, [3]float64{1, 1, 1})
	assert.Equal(Te, [3]float64{3, 4, 5}, B.Vec(1))
	assert.Equal(Te, [3]float64{4, 5, 6}, A.Vec(1))
	//in place.
	A.SubVec(A, [3]float64{10, 20, 30})
	assert.Equal(Te, [3]float64{-9, -18, -27}, A.Vec(0))
	assert.Panics(Te, func() { Zeros(3).SubVec(A, [3]float64{}) })
}

func TestGrow(Te *testing.T) {
	A, err := NewMatrix([]float64{1, 2, 3, 4, 5, 6})
	require.NoError(Te, err)
	G := A.Grow(2)
	require.Equal(Te, 4, G.NVecs())
	assert.Equal(Te, [3]float64{4, 5, 6}, G.Vec(1))
	assert.Equal(Te, [3]float64{0, 0, 0}, G.Vec(3))
	assert.Equal(Te, 2, A.NVecs())

	E := Zeros(0)
	assert.Equal(Te, 0, E.NVecs())
	E = E.Grow(1)
	assert.Equal(Te, 1, E.NVecs())
}
