/*
 * selection_test.go, part of apdap.
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

package selection

import (
	"testing"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func frame(Te *testing.T) *chem.Frame {
	coords, err := v3.NewMatrix([]float64{0, 0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9})
	require.NoError(Te, err)
	ats := []*chem.Atom{{ID: 1, Type: 1}, {ID: 2, Type: 2}, {ID: 3, Type: 1}, {ID: 4, Type: 2}}
	top, err := chem.NewTopology(ats)
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, nil)
	require.NoError(Te, err)
	F.Structure = []int{0, 1, 0, 2}
	F.SetExtra("c_pe", []float64{-3.5, -3.4, -2, -3.6})
	return F
}

func TestStructureTypeZero(Te *testing.T) {
	F := frame(Te)
	E, err := Compile("StructureType==0")
	require.NoError(Te, err)
	assert.Equal(Te, []string{"StructureType"}, E.Variables())
	require.NoError(Te, Frame(F, E))
	assert.Equal(Te, []int{1, 0, 1, 0}, F.Selection)
	n, ok := F.Attribute(NumSelectedAttribute)
	require.True(Te, ok)
	assert.Equal(Te, 2.0, n)
}

func TestCompound(Te *testing.T) {
	F := frame(Te)
	E, err := Compile("ParticleType == 2 && Position.Z > 4 || c_pe > -2.5")
	require.NoError(Te, err)
	sel, err := E.Eval(F)
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 0, 1, 1}, sel)

	E, err = Compile("abs(Position.X - 4) <= 3 && ParticleIdentifier != 3")
	require.NoError(Te, err)
	sel, err = E.Eval(F)
	require.NoError(Te, err)
	assert.Equal(Te, []int{0, 1, 0, 1}, sel)
}

func TestFunctions(Te *testing.T) {
	F := frame(Te)
	for src, want := range map[string][]int{
		"floor(c_pe) == -4 && ceil(c_pe) == -3":                   {1, 1, 0, 1},
		"max(Position.X, Position.Y) >= 5":                        {0, 0, 1, 1},
		"min(Position.Z, 6) == 6":                                 {0, 0, 1, 1},
		"abs(c_pe + 3.5) < 0.2 && min(ParticleIdentifier, 3) < 3": {1, 1, 0, 0},
	} {
		E, err := Compile(src)
		require.NoError(Te, err, src)
		sel, err := E.Eval(F)
		require.NoError(Te, err, src)
		assert.Equal(Te, want, sel, src)
	}
}

func TestErrors(Te *testing.T) {
	F := frame(Te)
	_, err := Compile("StructureType ==")
	assert.Error(Te, err)
	_, err = Compile("  ")
	assert.Error(Te, err)

	E, err := Compile("StructureType + 1")
	require.NoError(Te, err)
	_, err = E.Eval(F)
	assert.Error(Te, err)

	E, err = Compile("Cluster == 1")
	require.NoError(Te, err)
	_, err = E.Eval(F)
	assert.ErrorContains(Te, err, "unknown variable")
}

func TestVarName(Te *testing.T) {
	assert.Equal(Te, "StructureType", VarName(chem.PropStructure))
	assert.Equal(Te, "c_pe", VarName("c_pe"))
	assert.Equal(Te, "f_1_2_", VarName("f_1[2]"))
	assert.Equal(Te, "_2x", VarName("2x"))
}
