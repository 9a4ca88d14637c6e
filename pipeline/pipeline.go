/*
 * pipeline.go, part of apdap.
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

// Package pipeline reads the frames of a trajectory, runs a list of
// modifiers on each of them and delivers the results, in order, to a
// writer. Several frames are processed concurrently.
package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	chem "github.com/rmera/apdap"
)

// Options contains the parameters for running a pipeline.
type Options struct {
	cpus int
}

// DefaultOptions returns the default options: as many concurrent
// frames as logical CPUs.
func DefaultOptions() *Options {
	r := new(Options)
	r.cpus = runtime.NumCPU()
	return r
}

// Cpus returns the number of frames processed concurrently,
// and sets it to a new value, if a valid one is given.
func (O *Options) Cpus(cpus ...int) int {
	if len(cpus) > 0 && cpus[0] > 0 {
		O.cpus = cpus[0]
	}
	return O.cpus
}

// Pipeline is a source of frames plus the modifiers applied, in order,
// to each frame.
type Pipeline struct {
	Source    chem.Traj
	Modifiers []Modifier
}

// finisher is implemented by sinks that know when they need no more frames.
type finisher interface {
	Done(index int) bool
}

// Run processes every frame of the source and writes it to sink, in the
// order of the source. It returns a report of the frames processed.
// The sink is not closed. The logger is taken from ctx.
func (P *Pipeline) Run(ctx context.Context, sink chem.TrajWriter, O *Options) (*Report, error) {
	if O == nil {
		O = DefaultOptions()
	}
	logger := zerolog.Ctx(ctx)
	fin, _ := sink.(finisher)
	report := new(Report)
	start := time.Now()
	batch := make([]*chem.Frame, 0, O.Cpus())
	for index, last := 0, false; !last; {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		batch = batch[:0]
		for len(batch) < cap(batch) {
			F, err := P.Source.Next()
			if chem.IsLastFrame(err) {
				last = true
				break
			}
			if err != nil {
				return report, chem.ErrDecorate(err, fmt.Sprintf("Run, reading frame %d", index))
			}
			F.Index = index
			index++
			batch = append(batch, F)
		}
		if len(batch) == 0 {
			break
		}
		if err := P.process(ctx, batch); err != nil {
			return report, err
		}
		for _, F := range batch {
			if err := sink.WNext(F); err != nil {
				return report, chem.ErrDecorate(err, fmt.Sprintf("Run, writing frame %d", F.Index))
			}
			report.add(F)
			logger.Debug().Int("frame", F.Index).Int64("timestep", F.Timestep).Int("particles", F.Len()).Msg("frame done")
			if fin != nil && fin.Done(F.Index) {
				last = true
				break
			}
		}
	}
	if report.Len() == 0 {
		return report, fmt.Errorf("no frames read from the input")
	}
	logger.Info().Int("frames", report.Len()).Dur("elapsed", time.Since(start)).Msg("pipeline finished")
	return report, nil
}

// process runs the modifiers on every frame of batch, concurrently.
func (P *Pipeline) process(ctx context.Context, batch []*chem.Frame) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, F := range batch {
		F := F
		g.Go(func() error {
			return P.Apply(gctx, F)
		})
	}
	return g.Wait()
}

// Apply runs all the modifiers of the pipeline on F.
func (P *Pipeline) Apply(ctx context.Context, F *chem.Frame) error {
	for _, m := range P.Modifiers {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := m.Modify(ctx, F); err != nil {
			return chem.ErrDecorate(err, fmt.Sprintf("Apply, frame %d", F.Index))
		}
	}
	return nil
}
