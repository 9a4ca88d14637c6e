/*
 * dcd_test.go, part of apdap.
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

package dcd

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(Te *testing.T, shift float64) *chem.Frame {
	n := 5
	ats := make([]*chem.Atom, n)
	coords := v3.Zeros(n)
	for i := range ats {
		ats[i] = &chem.Atom{ID: i + 1, Type: 1}
		coords.SetVec(i, [3]float64{float64(i) + shift, 2 * float64(i), -0.5 * float64(i)})
	}
	top, err := chem.NewTopology(ats)
	require.NoError(Te, err)
	box, err := chem.NewBox([3]float64{}, [3][3]float64{{10, 0, 0}, {2, 9, 0}, {1, -1, 8}}, [3]bool{true, true, true})
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, box)
	require.NoError(Te, err)
	return F
}

// Tests the writing capabilities, by reading back what was written.
func TestDCDRoundTrip(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "test.dcd")
	f, err := os.Create(path)
	require.NoError(Te, err)
	frames := []*chem.Frame{testFrame(Te, 0), testFrame(Te, 0.25), testFrame(Te, 0.5)}
	W, err := NewWriter(f, path, frames[0].Len())
	require.NoError(Te, err)
	for _, F := range frames {
		require.NoError(Te, W.WNext(F))
	}
	require.NoError(Te, W.Close())
	require.NoError(Te, f.Close())

	R, err := New(path)
	require.NoError(Te, err)
	assert.Equal(Te, 5, R.Len())
	assert.Equal(Te, 3, R.Frames())
	for k, F := range frames {
		G, err := R.Next()
		require.NoError(Te, err)
		assert.Equal(Te, k, G.Index)
		for i := 0; i < F.Len(); i++ {
			a, b := F.Coords.Vec(i), G.Coords.Vec(i)
			for d := 0; d < 3; d++ {
				assert.InDelta(Te, a[d], b[d], 1e-5)
			}
		}
		//the cell is stored as lengths and angles, so it comes back in the
		//standard orientation. This one already is.
		fv, gv := F.Box.Vectors(), G.Box.Vectors()
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				assert.InDelta(Te, fv[i][j], gv[i][j], 1e-9)
			}
		}
		assert.InDelta(Te, F.Box.Volume(), G.Box.Volume(), 1e-9)
	}
	_, err = R.Next()
	assert.True(Te, chem.IsLastFrame(err))
	assert.False(Te, R.Readable())
}

func TestDCDParticleCount(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "count.dcd")
	f, err := os.Create(path)
	require.NoError(Te, err)
	defer f.Close()
	F := testFrame(Te, 0)
	W, err := NewWriter(f, path, F.Len())
	require.NoError(Te, err)
	F.AddParticle([3]float64{1, 1, 1}, 2)
	assert.Error(Te, W.WNext(F))
	_, err = NewWriter(f, path, 0)
	assert.Error(Te, err)
}

func TestCells(Te *testing.T) {
	//orthogonal, angles in degrees and as cosines (NAMD).
	for _, cell := range [][6]float64{{10, 90, 11, 90, 90, 12}, {10, 0, 11, 0, 0, 12}} {
		B, err := cellToBox(cell)
		require.NoError(Te, err)
		assert.InDelta(Te, 1320.0, B.Volume(), 1e-9)
		v := B.Vectors()
		assert.InDelta(Te, 11.0, v[1][1], 1e-9)
		assert.InDelta(Te, 0.0, v[1][0], 1e-9)
	}
	//hexagonal
	B, err := cellToBox([6]float64{3, 120, 3, 90, 90, 5})
	require.NoError(Te, err)
	assert.InDelta(Te, 3*3*math.Sqrt(3)/2*5, B.Volume(), 1e-9)
	back := boxToCell(B)
	for i, v := range [6]float64{3, 120, 3, 90, 90, 5} {
		assert.InDelta(Te, v, back[i], 1e-9)
	}
	_, err = cellToBox([6]float64{1, 180, 1, 90, 90, 1})
	assert.Error(Te, err)
}

func TestBadFile(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "bad.dcd")
	require.NoError(Te, os.WriteFile(path, []byte("this is not a dcd file at all, not even close to one, really not"), 0o644))
	_, err := New(path)
	assert.Error(Te, err)
}
