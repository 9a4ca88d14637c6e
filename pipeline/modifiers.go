/*
 * modifiers.go, part of apdap.
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

package pipeline

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/cluster"
	"github.com/rmera/apdap/ptm"
	"github.com/rmera/apdap/selection"
)

// AddedAttribute is the frame attribute with the number of particles
// inserted by AddClusterCenters.
const AddedAttribute = "ClusterCenters.num_added"

// Modifier is one step of the pipeline. Modify changes F in place.
// A Modifier may be called concurrently on different frames.
type Modifier interface {
	Modify(ctx context.Context, F *chem.Frame) error
}

// ModifierFunc adapts a function to the Modifier interface.
type ModifierFunc func(ctx context.Context, F *chem.Frame) error

// Modify calls f(ctx, F).
func (f ModifierFunc) Modify(ctx context.Context, F *chem.Frame) error { return f(ctx, F) }

// PTM classifies the local structure of every particle.
type PTM struct {
	Options *ptm.Options
}

// Modify sets the structure type and RMSD of every particle of F.
func (P PTM) Modify(ctx context.Context, F *chem.Frame) error {
	return ptm.Frame(ctx, F, P.Options)
}

// Select selects the particles for which an expression is true.
type Select struct {
	Expression *selection.Expression
}

// NewSelect compiles src into a Select modifier.
func NewSelect(src string) (*Select, error) {
	e, err := selection.Compile(src)
	if err != nil {
		return nil, err
	}
	return &Select{Expression: e}, nil
}

// Modify sets the selection of F.
func (S *Select) Modify(ctx context.Context, F *chem.Frame) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return selection.Frame(F, S.Expression)
}

// Cluster runs the cluster analysis.
type Cluster struct {
	Options *cluster.Options
}

// Modify sets the clusters of F.
func (C Cluster) Modify(ctx context.Context, F *chem.Frame) error {
	return cluster.Frame(ctx, F, C.Options)
}

// AddClusterCenters inserts one particle at the center of mass of each
// of the first N clusters of the cluster table. Frames with fewer
// clusters get fewer particles.
type AddClusterCenters struct {
	N int
	//Type of the new particles. 0 means one more than the largest
	//type in the frame.
	Type int
}

// Modify appends the new particles to F.
func (A AddClusterCenters) Modify(ctx context.Context, F *chem.Frame) error {
	if A.N < 0 {
		return fmt.Errorf("frame %d: can't add %d particles", F.Index, A.N)
	}
	if A.N > 0 && F.Cluster == nil {
		return fmt.Errorf("frame %d: cluster analysis must run before adding cluster centers", F.Index)
	}
	typ := A.Type
	if typ <= 0 {
		typ = F.MaxType() + 1
	}
	n := min(A.N, len(F.Clusters))
	for _, c := range F.Clusters[:n] {
		i := F.AddParticle(c.CenterOfMass, typ)
		zerolog.Ctx(ctx).Debug().Int("frame", F.Index).Int("cluster", c.ID).Int("size", c.Size).
			Int("id", F.Atom(i).ID).Floats64("position", c.CenterOfMass[:]).Msg("cluster center added")
	}
	F.SetAttribute(AddedAttribute, float64(n))
	return nil
}

// Wrap maps every particle into the cell, along the periodic axes.
type Wrap struct{}

// Modify wraps the coordinates of F.
func (Wrap) Modify(ctx context.Context, F *chem.Frame) error {
	if !F.Box.Periodic() {
		return nil
	}
	for i := 0; i < F.Coords.NVecs(); i++ {
		F.Coords.SetVec(i, F.Box.Wrap(F.Coords.Vec(i)))
	}
	return nil
}
