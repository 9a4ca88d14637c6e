/*
 * ptm_test.go, part of apdap.
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

package ptm

import (
	"context"
	"math"
	"math/rand/v2"
	"testing"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/neighbors"
	v3 "github.com/rmera/apdap/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lattice replicates the basis (in units of the cell) n times along each
// axis of an orthogonal cell of the given edges.
func lattice(Te testing.TB, basis [][3]float64, edges [3]float64, n [3]int) (*v3.Matrix, *chem.Box) {
	coords := v3.Zeros(len(basis) * n[0] * n[1] * n[2])
	l := 0
	for i := 0; i < n[0]; i++ {
		for j := 0; j < n[1]; j++ {
			for k := 0; k < n[2]; k++ {
				for _, b := range basis {
					coords.SetVec(l, [3]float64{
						(float64(i) + b[0]) * edges[0],
						(float64(j) + b[1]) * edges[1],
						(float64(k) + b[2]) * edges[2]})
					l++
				}
			}
		}
	}
	hi := [3]float64{float64(n[0]) * edges[0], float64(n[1]) * edges[1], float64(n[2]) * edges[2]}
	box, err := chem.NewOrthoBox([3]float64{}, hi, [3]bool{true, true, true})
	require.NoError(Te, err)
	return coords, box
}

func allOf(Te *testing.T, st []StructureType, rmsd []float64, want StructureType) {
	for i, v := range st {
		require.Equal(Te, want, v, "particle %d", i)
		require.Less(Te, rmsd[i], 1e-6, "particle %d", i)
	}
}

func TestPerfectLattices(Te *testing.T) {
	ctx := context.Background()
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(Te, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{3, 3, 3})
	st, rmsd, err := Classify(ctx, coords, box, nil)
	require.NoError(Te, err)
	allOf(Te, st, rmsd, FCC)

	bcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0.5}}
	coords, box = lattice(Te, bcc, [3]float64{2.87, 2.87, 2.87}, [3]int{4, 4, 4})
	st, rmsd, err = Classify(ctx, coords, box, nil)
	require.NoError(Te, err)
	allOf(Te, st, rmsd, BCC)

	coords, box = lattice(Te, [][3]float64{{0, 0, 0}}, [3]float64{2.5, 2.5, 2.5}, [3]int{5, 5, 5})
	st, rmsd, err = Classify(ctx, coords, box, nil)
	require.NoError(Te, err)
	allOf(Te, st, rmsd, SC)

	a := 2.5
	c := a * math.Sqrt(8.0/3.0)
	hcp := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 1.0 / 6.0, 0.5}, {0, 2.0 / 3.0, 0.5}}
	coords, box = lattice(Te, hcp, [3]float64{a, a * math.Sqrt(3), c}, [3]int{4, 3, 3})
	st, rmsd, err = Classify(ctx, coords, box, nil)
	require.NoError(Te, err)
	allOf(Te, st, rmsd, HCP)
}

func TestIcosahedron(Te *testing.T) {
	ico := icoShell()
	coords := v3.Zeros(len(ico) + 1)
	for i, v := range ico {
		coords.SetVec(i+1, scale(v, 1.3))
	}
	st, rmsd, err := Classify(context.Background(), coords, nil, nil)
	require.NoError(Te, err)
	assert.Equal(Te, ICO, st[0])
	assert.Less(Te, rmsd[0], 1e-6)
}

func TestDisorderAndCutoff(Te *testing.T) {
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(Te, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{3, 3, 3})
	n := coords.NVecs()
	//an interstitial at a tetrahedral site.
	coords = coords.Grow(1)
	coords.SetVec(n, [3]float64{0.9, 0.9, 0.9})
	top := make([]*chem.Atom, n+1)
	for i := range top {
		top[i] = &chem.Atom{ID: i + 1, Type: 1}
	}
	T, err := chem.NewTopology(top)
	require.NoError(Te, err)
	F, err := chem.NewFrame(T, coords, box)
	require.NoError(Te, err)
	require.NoError(Te, Frame(context.Background(), F, DefaultOptions()))
	assert.Equal(Te, int(Other), F.Structure[n])
	//far from the interstitial, the lattice is untouched.
	assert.Equal(Te, int(FCC), F.Structure[n-1])
	assert.Less(Te, F.RMSD[n-1], 1e-6)
	other, ok := F.Attribute(CountsAttribute + "OTHER")
	require.True(Te, ok)
	assert.GreaterOrEqual(Te, other, 1.0)
	fccN, _ := F.Attribute(CountsAttribute + "FCC")
	assert.Equal(Te, float64(n+1), other+fccN+attr(F, "HCP")+attr(F, "BCC")+attr(F, "ICO")+attr(F, "SC"))
}

func TestRMSDCutoff(Te *testing.T) {
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(Te, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{3, 3, 3})
	coords.SetVec(0, [3]float64{0.2, 0.1, -0.1})
	O := DefaultOptions()
	O.RMSDCutoff(0)
	st, rmsd, err := Classify(context.Background(), coords, box, O)
	require.NoError(Te, err)
	assert.Equal(Te, FCC, st[0])
	assert.Greater(Te, rmsd[0], 1e-4)
	O.RMSDCutoff(rmsd[0] / 2)
	st, _, err = Classify(context.Background(), coords, box, O)
	require.NoError(Te, err)
	assert.Equal(Te, Other, st[0])
}

func attr(F *chem.Frame, name string) float64 {
	v, _ := F.Attribute(CountsAttribute + name)
	return v
}

func TestOptionsAndParse(Te *testing.T) {
	O := DefaultOptions()
	assert.Equal(Te, 0.12, O.RMSDCutoff())
	assert.Len(Te, O.Structures(), 5)
	O.Structures([]StructureType{FCC, Other, BCC})
	assert.Equal(Te, []StructureType{FCC, BCC}, O.Structures())
	s, err := ParseStructure("hcp")
	require.NoError(Te, err)
	assert.Equal(Te, HCP, s)
	_, err = ParseStructure("diamond")
	assert.Error(Te, err)
	assert.Equal(Te, "ICO", ICO.String())
}

func TestTemplatesNormalized(Te *testing.T) {
	for k, t := range templates {
		mean := 0.0
		for _, l := range t.lengths {
			mean += l
		}
		assert.InDelta(Te, 1.0, mean/float64(t.n()), 1e-12, k.String())
	}
	assert.Equal(Te, 14, templates[BCC].n())
	assert.Equal(Te, 6, templates[SC].n())
}

func TestCancel(Te *testing.T) {
	coords, box := lattice(Te, [][3]float64{{0, 0, 0}}, [3]float64{2.5, 2.5, 2.5}, [3]int{3, 3, 3})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := Classify(ctx, coords, box, nil)
	assert.ErrorIs(Te, err, context.Canceled)
}

func TestTemplateSymmetries(Te *testing.T) {
	for k, want := range map[StructureType]int{FCC: 24, HCP: 6, BCC: 24, ICO: 60, SC: 24} {
		perms := symmetries(templates[k].vecs)
		assert.Len(Te, perms, want, k.String())
		for _, p := range perms {
			seen := make(map[int]bool)
			for _, v := range p {
				seen[v] = true
			}
			assert.Len(Te, seen, templates[k].n(), k.String())
		}
	}
	assert.Len(Te, templates[FCC].pairs, 6)
	assert.Len(Te, templates[SC].pairs, 2)
	assert.Len(Te, templates[ICO].pairs, 3)
	for k, t := range templates {
		assert.Less(Te, len(t.pairs), t.n()*(t.n()-1)/2, k.String())
	}
}

// noisy displaces every particle of coords by a gaussian of width sigma.
func noisy(coords *v3.Matrix, sigma float64, rng *rand.Rand) {
	for i := 0; i < coords.NVecs(); i++ {
		v := coords.Vec(i)
		for j := range v {
			v[j] += sigma * rng.NormFloat64()
		}
		coords.SetVec(i, v)
	}
}

// Trying every ordered pair of template vectors as anchors must give the
// same RMSD as trying one pair per symmetry class.
func TestAnchorClassesComplete(Te *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(Te, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{3, 3, 3})
	noisy(coords, 0.1, rng)
	finder, err := neighbors.NewFinder(coords, box, 4)
	require.NoError(Te, err)
	for _, k := range []StructureType{FCC, HCP, ICO} {
		t := templates[k]
		all := *t
		all.pairs = nil
		for a := 0; a < t.n(); a++ {
			for b := 0; b < t.n(); b++ {
				if a != b {
					all.pairs = append(all.pairs, [2]int{a, b})
				}
			}
		}
		for i := 0; i < 20; i++ {
			nb := finder.Nearest(i, t.n())
			require.Len(Te, nb, t.n())
			assert.InDelta(Te, match(nb, &all), match(nb, t), 1e-6, "%s particle %d", k, i)
		}
	}
}

func TestThermalNoise(Te *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(Te, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{4, 4, 4})
	noisy(coords, 0.05, rng)
	st, _, err := Classify(context.Background(), coords, box, nil)
	require.NoError(Te, err)
	assert.GreaterOrEqual(Te, count(st, FCC), 9*len(st)/10)

	bcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0.5}}
	coords, box = lattice(Te, bcc, [3]float64{2.87, 2.87, 2.87}, [3]int{5, 5, 5})
	noisy(coords, 0.05, rng)
	st, _, err = Classify(context.Background(), coords, box, nil)
	require.NoError(Te, err)
	assert.GreaterOrEqual(Te, count(st, BCC), 9*len(st)/10)
}

func count(st []StructureType, s StructureType) int {
	n := 0
	for _, v := range st {
		if v == s {
			n++
		}
	}
	return n
}

func BenchmarkClassify(b *testing.B) {
	rng := rand.New(rand.NewPCG(5, 6))
	fcc := [][3]float64{{0, 0, 0}, {0.5, 0.5, 0}, {0.5, 0, 0.5}, {0, 0.5, 0.5}}
	coords, box := lattice(b, fcc, [3]float64{3.6, 3.6, 3.6}, [3]int{6, 6, 6})
	noisy(coords, 0.08, rng)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := Classify(ctx, coords, box, nil); err != nil {
			b.Fatal(err)
		}
	}
}
