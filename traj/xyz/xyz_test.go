/*
 * xyz_test.go, part of apdap.
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

package xyz

import (
	"bytes"
	"strings"
	"testing"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plain = `3
water, plain
O 0.0 0.0 0.0
H 0.757 0.586 0.0
H -0.757 0.586 0.0
3

O 1.0 0.0 0.0
H 1.757 0.586 0.0
H 0.243 0.586 0.0
`

func TestPlain(Te *testing.T) {
	R := NewReader(strings.NewReader(plain), "water.xyz")
	F, err := R.Next()
	require.NoError(Te, err)
	require.Equal(Te, 3, F.Len())
	assert.Equal(Te, "O", F.Atom(0).Symbol)
	assert.Equal(Te, 1, F.Atom(0).Type)
	assert.Equal(Te, 2, F.Atom(1).Type)
	assert.InDelta(Te, 15.999, F.Atom(0).Mass, 0.01)
	assert.False(Te, F.Box.Periodic())

	F, err = R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, 1, F.Index)
	assert.Equal(Te, 2, F.Atom(2).Type)
	assert.Equal(Te, [3]float64{1, 0, 0}, F.Coords.Vec(0))

	_, err = R.Next()
	assert.True(Te, chem.IsLastFrame(err))
}

func TestExtended(Te *testing.T) {
	src := `2
Lattice="10 0 0 1 9 0 0 0 8" Origin="-1 -1 -1" pbc="T T F" Properties=species:S:1:pos:R:3:id:I:1:velo:R:3:fixed:L:1 Timestep=500
Cu 1 2 3 7 0.1 0.2 0.3 T
Cu 4 5 6 3 -0.1 -0.2 -0.3 F
`
	R := NewReader(strings.NewReader(src), "cu.extxyz")
	F, err := R.Next()
	require.NoError(Te, err)
	assert.Equal(Te, int64(500), F.Timestep)
	assert.Equal(Te, 3, F.Atom(0).ID)
	assert.Equal(Te, [3]float64{4, 5, 6}, F.Coords.Vec(0))
	assert.Equal(Te, [3]float64{1, 9, 0}, F.Box.Vector(1))
	assert.Equal(Te, [3]float64{-1, -1, -1}, F.Box.Origin())
	assert.True(Te, F.Box.PBC(1))
	assert.False(Te, F.Box.PBC(2))
	assert.Equal(Te, []string{"velo.X", "velo.Y", "velo.Z", "fixed"}, F.ExtraOrder)
	assert.Equal(Te, []float64{-0.2, 0.2}, F.Extra["velo.Y"])
	assert.Equal(Te, []float64{0, 1}, F.Extra["fixed"])
}

func TestParseComment(Te *testing.T) {
	k, err := ParseComment(`Lattice="1 0 0 0 1 0 0 0 1" Properties=species:S:1:pos:R:3 energy=-3.5 stress={1 2 3} flag`)
	require.NoError(Te, err)
	assert.Equal(Te, "1 0 0 0 1 0 0 0 1", k["lattice"])
	assert.Equal(Te, "species:S:1:pos:R:3", k["properties"])
	assert.Equal(Te, "-3.5", k["energy"])
	assert.Equal(Te, "1 2 3", k["stress"])
	assert.Equal(Te, "T", k["flag"])
	_, err = ParseComment(`Lattice="1 0 0`)
	assert.Error(Te, err)
}

func TestBadFiles(Te *testing.T) {
	for _, src := range []string{
		"x\n\n",
		"2\n\nO 0 0 0\n",
		"1\nProperties=species:S:1:pos:R:2\nO 0 0\n",
		"1\nLattice=\"1 0 0 0 1 0\" Properties=species:S:1:pos:R:3\nO 0 0 0\n",
		"1\nProperties=species:S:1:pos:R:3\nO 0 a 0\n",
	} {
		R := NewReader(strings.NewReader(src), "bad.xyz")
		_, err := R.Next()
		require.Error(Te, err, src)
		assert.False(Te, chem.IsLastFrame(err), src)
	}
}

func TestRoundTrip(Te *testing.T) {
	top, err := chem.NewTopology([]*chem.Atom{{ID: 1, Type: 1}, {ID: 2, Type: 2}})
	require.NoError(Te, err)
	coords, err := v3.NewMatrix([]float64{0.5, 1.5, 2.5, 3.25, 4.125, 5})
	require.NoError(Te, err)
	box, err := chem.NewBox([3]float64{0, 0, 0}, [3][3]float64{{6, 0, 0}, {1, 6, 0}, {0.5, 0.25, 6}}, [3]bool{true, true, true})
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, box)
	require.NoError(Te, err)
	F.Timestep = 7
	F.Cluster = []int{1, 0}
	F.SetExtra("c_pe", []float64{-1.5, -2.25})

	cols := []string{chem.PropIdentifier, chem.PropType, chem.PropPositionX, chem.PropPositionY, chem.PropPositionZ, chem.PropCluster, "c_pe"}
	var buf bytes.Buffer
	W, err := NewWriter(&buf, "out.xyz", cols, 10)
	require.NoError(Te, err)
	require.NoError(Te, W.WNext(F))
	require.NoError(Te, W.Close())
	assert.Contains(Te, buf.String(), "Properties=id:I:1:type:I:1:pos:R:3:Cluster:I:1:c_pe:R:1")

	G, err := NewReader(&buf, "out.xyz").Next()
	require.NoError(Te, err)
	assert.Equal(Te, int64(7), G.Timestep)
	assert.Equal(Te, 2, G.Atom(1).Type)
	assert.Equal(Te, F.Coords.Vec(1), G.Coords.Vec(1))
	assert.Equal(Te, F.Box.Vectors(), G.Box.Vectors())
	assert.Equal(Te, []int{1, 0}, G.Cluster)
	assert.Equal(Te, []float64{-1.5, -2.25}, G.Extra["c_pe"])
}
