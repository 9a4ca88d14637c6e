/*
 * cluster_test.go, part of apdap.
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

package cluster

import (
	"context"
	"testing"

	chem "github.com/rmera/apdap"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFrame(Te *testing.T, pos []float64, masses []float64, edge float64) *chem.Frame {
	coords, err := v3.NewMatrix(pos)
	require.NoError(Te, err)
	ats := make([]*chem.Atom, coords.NVecs())
	for i := range ats {
		ats[i] = &chem.Atom{ID: i + 1, Type: 1}
		if masses != nil {
			ats[i].Mass = masses[i]
		}
	}
	top, err := chem.NewTopology(ats)
	require.NoError(Te, err)
	box, err := chem.NewOrthoBox([3]float64{}, [3]float64{edge, edge, edge}, [3]bool{true, true, true})
	require.NoError(Te, err)
	F, err := chem.NewFrame(top, coords, box)
	require.NoError(Te, err)
	return F
}

func TestClustersSortedBySize(Te *testing.T) {
	pos := []float64{
		10, 10, 10, //0, pair
		11, 10, 10, //1, pair
		5, 5, 5, //2, chain
		6, 5, 5, //3, chain
		8, 8, 8, //4, not selected
		7, 5, 5, //5, chain
	}
	F := newFrame(Te, pos, nil, 20)
	F.Selection = []int{1, 1, 1, 1, 0, 1}
	O := DefaultOptions()
	O.Cutoff(1.5)
	require.NoError(Te, Frame(context.Background(), F, O))
	assert.Equal(Te, []int{2, 2, 1, 1, 0, 1}, F.Cluster)
	require.Len(Te, F.Clusters, 2)
	assert.Equal(Te, 3, F.Clusters[0].Size)
	assert.Equal(Te, [3]float64{6, 5, 5}, F.Clusters[0].CenterOfMass)
	assert.InDelta(Te, 10.5, F.Clusters[1].CenterOfMass[0], 1e-12)
	n, _ := F.Attribute(CountAttribute)
	assert.Equal(Te, 2.0, n)
	l, _ := F.Attribute(LargestAttribute)
	assert.Equal(Te, 3.0, l)
}

func TestTiesKeepOrder(Te *testing.T) {
	pos := []float64{
		1, 1, 1,
		15, 15, 15,
		2, 1, 1,
		16, 15, 15,
	}
	F := newFrame(Te, pos, nil, 30)
	F.Selection = []int{1, 1, 1, 1}
	O := DefaultOptions()
	O.Cutoff(1.5)
	res, err := Analyze(context.Background(), F, O)
	require.NoError(Te, err)
	assert.Equal(Te, []int{1, 2, 1, 2}, res.Assignment)
	assert.Equal(Te, [][]int{{0, 2}, {1, 3}}, res.Members)
}

func TestPeriodicCenterOfMass(Te *testing.T) {
	pos := []float64{
		9.5, 5, 5,
		0.5, 5, 5,
		9.8, 9.7, 5,
	}
	F := newFrame(Te, pos, []float64{1, 1, 2}, 10)
	F.Selection = []int{1, 1, 0}
	O := DefaultOptions()
	O.Cutoff(1.5)
	O.RadiusOfGyration(true)
	require.NoError(Te, Frame(context.Background(), F, O))
	require.Len(Te, F.Clusters, 1)
	com := F.Clusters[0].CenterOfMass
	assert.InDelta(Te, 10.0, com[0], 1e-9)
	assert.InDelta(Te, 5.0, com[1], 1e-9)
	w := F.Box.Wrap(com)
	assert.InDelta(Te, 0.0, w[0], 1e-9)
	assert.InDelta(Te, 0.5, F.Clusters[0].RadiusOfGyration, 1e-9)
	assert.Equal(Te, []int{1, 1, 0}, F.Cluster)
}

func TestMassWeighted(Te *testing.T) {
	pos := []float64{
		1, 1, 1,
		3, 1, 1,
	}
	F := newFrame(Te, pos, []float64{3, 1}, 20)
	F.Selection = []int{1, 1}
	O := DefaultOptions()
	O.Cutoff(2.5)
	require.NoError(Te, Frame(context.Background(), F, O))
	assert.InDelta(Te, 1.5, F.Clusters[0].CenterOfMass[0], 1e-12)

	//unknown masses give the geometric center.
	F.Atom(1).Mass = 0
	require.NoError(Te, Frame(context.Background(), F, O))
	assert.InDelta(Te, 2.0, F.Clusters[0].CenterOfMass[0], 1e-12)
}

func TestSelectionRequired(Te *testing.T) {
	F := newFrame(Te, []float64{1, 1, 1}, nil, 10)
	_, err := Analyze(context.Background(), F, DefaultOptions())
	assert.Error(Te, err)

	O := DefaultOptions()
	O.OnlySelected(false)
	res, err := Analyze(context.Background(), F, O)
	require.NoError(Te, err)
	assert.Len(Te, res.Clusters, 1)

	F.Selection = []int{0}
	require.NoError(Te, Frame(context.Background(), F, DefaultOptions()))
	assert.Empty(Te, F.Clusters)
	l, _ := F.Attribute(LargestAttribute)
	assert.Equal(Te, 0.0, l)
}

func TestSmallBoxSelfImages(Te *testing.T) {
	//one particle in a box smaller than the cutoff forms its own cluster.
	F := newFrame(Te, []float64{0.5, 0.5, 0.5}, nil, 1)
	F.Selection = []int{1}
	require.NoError(Te, Frame(context.Background(), F, DefaultOptions()))
	require.Len(Te, F.Clusters, 1)
	assert.Equal(Te, [3]float64{0.5, 0.5, 0.5}, F.Clusters[0].CenterOfMass)
}
