/*
 * stf_test.go, part of apdap.
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

package stf

import (
	"os"
	"path/filepath"
	"testing"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFrame(Te *testing.T, shift float64) *chem.Frame {
	top, err := chem.NewTopology([]*chem.Atom{{ID: 1, Type: 1, Symbol: "Cu", Mass: 63.55}, {ID: 2, Type: 2}, {ID: 4, Type: 2}})
	require.NoError(Te, err)
	coords, err := v3.NewMatrix([]float64{0.5, 1.5, 2.5, 3.25, 4.125, 5, -1, 0, 9.999})
	require.NoError(Te, err)
	for i := 0; i < coords.NVecs(); i++ {
		v := coords.Vec(i)
		v[0] += shift
		coords.SetVec(i, v)
	}
	box, err := chem.NewBox([3]float64{-2, -2, -2}, [3][3]float64{{12, 0, 0}, {1, 12, 0}, {0, 0, 12}}, [3]bool{true, true, false})
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, box)
	require.NoError(Te, err)
	return F
}

// Tests writing and reading back a trajectory with each of the compressions.
func TestSTFRoundTrip(Te *testing.T) {
	for _, name := range []string{"test.stf", "test.stz", "test.stl", "test.str"} {
		path := filepath.Join(Te.TempDir(), name)
		f, err := os.Create(path)
		require.NoError(Te, err)
		frames := []*chem.Frame{testFrame(Te, 0), testFrame(Te, 0.5)}
		W, err := NewWriter(f, path, frames[0], map[string]string{KeyPrec: "3", "creator": "test"})
		require.NoError(Te, err)
		assert.Equal(Te, 3, W.Len())
		for _, F := range frames {
			require.NoError(Te, W.WNext(F))
		}
		require.NoError(Te, W.Close())
		require.NoError(Te, f.Close())

		R, header, err := New(path)
		require.NoError(Te, err, name)
		assert.Equal(Te, "test", header["creator"])
		assert.Equal(Te, "3", header[KeyPrec])
		assert.Equal(Te, 3, R.Len())
		for k, F := range frames {
			G, err := R.Next()
			require.NoError(Te, err)
			assert.Equal(Te, k, G.Index)
			for i := 0; i < F.Len(); i++ {
				assert.Equal(Te, F.Atom(i).ID, G.Atom(i).ID)
				assert.Equal(Te, F.Atom(i).Type, G.Atom(i).Type)
				a, b := F.Coords.Vec(i), G.Coords.Vec(i)
				for d := 0; d < 3; d++ {
					assert.InDelta(Te, a[d], b[d], 0.0005)
				}
			}
			assert.Equal(Te, "Cu", G.Atom(0).Symbol)
			assert.Equal(Te, F.Box.Origin(), G.Box.Origin())
			assert.Equal(Te, F.Box.Vectors(), G.Box.Vectors())
			assert.False(Te, G.Box.PBC(2))
		}
		_, err = R.Next()
		assert.True(Te, chem.IsLastFrame(err))
		assert.False(Te, R.Readable())
	}
}

func TestSTFParticleCount(Te *testing.T) {
	path := filepath.Join(Te.TempDir(), "count.stf")
	f, err := os.Create(path)
	require.NoError(Te, err)
	defer f.Close()
	F := testFrame(Te, 0)
	W, err := NewWriter(f, path, F, nil)
	require.NoError(Te, err)
	F.AddParticle([3]float64{1, 1, 1}, 3)
	err = W.WNext(F)
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "4 coordinates given, but 3 expected")
}

func TestCoordsEncodeDecode(Te *testing.T) {
	var temp [3]int
	b := coordsEncode(nil, [3]float64{1.234, -5.678, 0.004}, temp, 2)
	assert.Equal(Te, "123 -568 0\n", string(b))
	var back [3]float64
	require.NoError(Te, coordsDecode("123 -568 0", &back, 2))
	assert.Equal(Te, [3]float64{1.23, -5.68, 0}, back)
	assert.Error(Te, coordsDecode("1 2", &back, 2))
	assert.Error(Te, coordsDecode("1 2 x", &back, 2))
}
