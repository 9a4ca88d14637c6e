/*
 * lammps_test.go, part of apdap.
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

package lammps

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orthoDump = `ITEM: TIMESTEP
100
ITEM: NUMBER OF ATOMS
3
ITEM: BOX BOUNDS pp pp ff
0.0 10.0
-5.0 5.0
0.0 20.0
ITEM: ATOMS id type x y z c_pe
3 2 1.0 2.0 3.0 -3.5
1 1 0.5 0.5 0.5 -3.6
2 1 9.5 -4.5 19.0 -3.4
ITEM: TIMESTEP
200
ITEM: NUMBER OF ATOMS
3
ITEM: BOX BOUNDS pp pp ff
0.0 10.0
-5.0 5.0
0.0 20.0
ITEM: ATOMS id type xs ys zs c_pe
1 1 0.1 0.5 0.25 -3.6
2 1 0.2 0.5 0.5 -3.4
3 2 0.3 0.5 0.75 -3.5
`

func TestReadOrthogonal(Te *testing.T) {
	R := NewReader(strings.NewReader(orthoDump), "test.dump")
	F, err := R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, int64(100), F.Timestep)
	assert.Equal(Te, 0, F.Index)
	require.Equal(Te, 3, F.Len())
	//sorted by identifier
	assert.Equal(Te, []int{1, 2, 3}, []int{F.Atom(0).ID, F.Atom(1).ID, F.Atom(2).ID})
	assert.Equal(Te, 2, F.Atom(2).Type)
	assert.Equal(Te, [3]float64{1, 2, 3}, F.Coords.Vec(2))
	assert.Equal(Te, []float64{-3.6, -3.4, -3.5}, F.Extra["c_pe"])
	assert.True(Te, F.Box.PBC(0))
	assert.True(Te, F.Box.PBC(1))
	assert.False(Te, F.Box.PBC(2))
	assert.Equal(Te, [3]float64{0, -5, 0}, F.Box.Origin())
	assert.InDelta(Te, 2000.0, F.Box.Volume(), 1e-9)

	F, err = R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, int64(200), F.Timestep)
	assert.Equal(Te, 1, F.Index)
	p := F.Coords.Vec(2)
	assert.InDelta(Te, 3.0, p[0], 1e-12)
	assert.InDelta(Te, 0.0, p[1], 1e-12)
	assert.InDelta(Te, 15.0, p[2], 1e-12)

	_, err = R.Next()
	require.Error(Te, err)
	assert.True(Te, chem.IsLastFrame(err))
	assert.False(Te, R.Readable())
}

func TestReadErrors(Te *testing.T) {
	bad := strings.Replace(orthoDump, "9.5 -4.5 19.0", "9.5 oops 19.0", 1)
	R := NewReader(strings.NewReader(bad), "bad.dump")
	_, err := R.Next()
	require.Error(Te, err)
	var terr traj.Error
	require.ErrorAs(Te, err, &terr)
	assert.Equal(Te, 12, terr.Line)
	assert.Equal(Te, "bad.dump", terr.FileName())
	assert.False(Te, chem.IsLastFrame(err))

	truncated := strings.Join(strings.Split(orthoDump, "\n")[:11], "\n")
	R = NewReader(strings.NewReader(truncated), "short.dump")
	_, err = R.Next()
	assert.ErrorContains(Te, err, "expected 3 atoms")
}

func TestTriclinicRoundTrip(Te *testing.T) {
	box, err := chem.NewBox([3]float64{1, 2, 3}, [3][3]float64{{10, 0, 0}, {-2, 9, 0}, {1.5, 0.5, 8}}, [3]bool{true, true, true})
	require.NoError(Te, err)
	F := testFrame(Te, box)
	F.Structure = []int{0, 1, 2}
	F.RMSD = []float64{0, 0.05, 0.1}
	F.SetExtra("c_pe", []float64{-1.25, -2.5, -3.75})

	cols := []string{chem.PropIdentifier, chem.PropType, chem.PropPositionX, chem.PropPositionY, chem.PropPositionZ, chem.PropStructure, chem.PropRMSD, "c_pe"}
	var buf bytes.Buffer
	W, err := NewWriter(&buf, "out.dump", cols, 12)
	require.NoError(Te, err)
	require.NoError(Te, W.WNext(F))
	require.NoError(Te, W.WNext(F))
	require.NoError(Te, W.Close())
	assert.Equal(Te, 2, W.Frames())
	assert.Contains(Te, buf.String(), "ITEM: BOX BOUNDS xy xz yz pp pp pp\n")
	assert.Contains(Te, buf.String(), "ITEM: ATOMS id type x y z StructureType RMSD c_pe\n")

	R := NewReader(&buf, "out.dump")
	for k := 0; k < 2; k++ {
		G, err := R.Next()
		require.NoError(Te, err)
		assertSameFrame(Te, F, G)
		assert.Equal(Te, F.Structure, G.Structure)
		assert.Equal(Te, F.RMSD, G.RMSD)
		assert.Equal(Te, F.Extra["c_pe"], G.Extra["c_pe"])
	}
	_, err = R.Next()
	assert.True(Te, chem.IsLastFrame(err))
}

func TestOrthogonalRoundTripCompressed(Te *testing.T) {
	box, err := chem.NewOrthoBox([3]float64{-1, -1, -1}, [3]float64{9, 19, 4}, [3]bool{true, false, true})
	require.NoError(Te, err)
	F := testFrame(Te, box)
	for _, name := range []string{"t.dump", "t.dump.gz", "t.dump.zst"} {
		path := filepath.Join(Te.TempDir(), name)
		f, err := os.Create(path)
		require.NoError(Te, err)
		cw, err := traj.Compress(f, path)
		require.NoError(Te, err)
		W, err := NewWriter(cw, path, []string{chem.PropIdentifier, chem.PropType, chem.PropPositionX, chem.PropPositionY, chem.PropPositionZ}, 0)
		require.NoError(Te, err)
		require.NoError(Te, W.WNext(F))
		require.NoError(Te, W.Close())
		require.NoError(Te, cw.Close())
		require.NoError(Te, f.Close())

		R, err := New(path)
		require.NoError(Te, err)
		G, err := R.Next()
		require.NoError(Te, err, name)
		assertSameFrame(Te, F, G)
		assert.False(Te, G.Box.PBC(1))
		assert.True(Te, G.Box.Orthogonal())
		require.NoError(Te, R.Close())
	}
}

func TestWriterMissingColumn(Te *testing.T) {
	F := testFrame(Te, nil)
	var buf bytes.Buffer
	W, err := NewWriter(&buf, "x.dump", []string{chem.PropIdentifier, chem.PropCluster}, 6)
	require.NoError(Te, err)
	assert.Error(Te, W.WNext(F))
	_, err = NewWriter(&buf, "x.dump", nil, 6)
	assert.Error(Te, err)
}

func testFrame(Te *testing.T, box *chem.Box) *chem.Frame {
	top, err := chem.NewTopology([]*chem.Atom{{ID: 1, Type: 1}, {ID: 2, Type: 1}, {ID: 5, Type: 3}})
	require.NoError(Te, err)
	coords, err := v3.NewMatrix([]float64{1.5, 2.5, 3.5, 4.25, 5.125, 6, 0.1, 0.2, 0.3})
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, box)
	require.NoError(Te, err)
	F.Timestep = 42
	return F
}

func assertSameFrame(Te *testing.T, F, G *chem.Frame) {
	require.Equal(Te, F.Len(), G.Len())
	assert.Equal(Te, F.Timestep, G.Timestep)
	for i := 0; i < F.Len(); i++ {
		assert.Equal(Te, F.Atom(i).ID, G.Atom(i).ID)
		assert.Equal(Te, F.Atom(i).Type, G.Atom(i).Type)
		a, b := F.Coords.Vec(i), G.Coords.Vec(i)
		for d := 0; d < 3; d++ {
			assert.InDelta(Te, a[d], b[d], 1e-9)
		}
	}
	fo, gOrig := F.Box.Origin(), G.Box.Origin()
	for d := 0; d < 3; d++ {
		assert.InDelta(Te, fo[d], gOrig[d], 1e-9)
		fv, gv := F.Box.Vector(d), G.Box.Vector(d)
		for e := 0; e < 3; e++ {
			assert.InDelta(Te, fv[e], gv[e], 1e-9)
		}
		assert.Equal(Te, F.Box.PBC(d), G.Box.PBC(d))
	}
}
