/*
 * main.go, part of apdap.
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

// Command apdap adds a particle at the center of mass of the largest
// disordered clusters of every frame of a trajectory.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rmera/apdap/chemplot"
	"github.com/rmera/apdap/cluster"
	"github.com/rmera/apdap/export"
	"github.com/rmera/apdap/internal/log"
	"github.com/rmera/apdap/pipeline"
	"github.com/rmera/apdap/ptm"
)

type options struct {
	numClusters   int
	rmsdCutoff    float64
	exportConfig  string
	clusterCutoff float64
	expression    string
	markerType    int
	structures    []string
	cpus          int
	plot          string
	logLevel      string
	logJSON       bool
}

func newRootCmd(stderr io.Writer) *cobra.Command {
	o := new(options)
	cmd := &cobra.Command{
		Use:   "apdap input_path output_path",
		Short: "Add a particle at the center of mass of the largest disordered clusters",
		Long: `apdap classifies the local structure of every particle of each frame of a
trajectory with polyhedral template matching, clusters the particles that are
not crystalline, adds a particle at the center of mass of the largest clusters,
wraps everything into the periodic cell and exports the result.

The output is a LAMMPS dump with identifiers, types and positions, unless a
JSON or YAML export configuration is given.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), o, args[0], args[1], stderr)
		},
	}
	f := cmd.Flags()
	f.IntVar(&o.numClusters, "num_clusters", 1, "number of clusters, largest first, that get a particle at their center of mass")
	f.Float64Var(&o.rmsdCutoff, "rmsd_cutoff", 0.12, "RMSD cutoff for the structure templates, 0 for none")
	f.StringVar(&o.exportConfig, "export_config_path", "", "JSON or YAML file with the export arguments")
	f.Float64Var(&o.clusterCutoff, "cluster_cutoff", 3.2, "neighbor cutoff for the cluster analysis")
	f.StringVar(&o.expression, "expression", "StructureType==0", "expression selecting the particles to cluster")
	f.IntVar(&o.markerType, "marker_type", 0, "particle type of the added particles, 0 for one more than the largest type")
	f.StringSliceVar(&o.structures, "structures", []string{"FCC", "HCP", "BCC", "ICO", "SC"}, "structure templates to match")
	f.IntVar(&o.cpus, "cpus", runtime.NumCPU(), "frames processed concurrently")
	f.StringVar(&o.plot, "plot", "", "PNG file for a plot of the per-frame statistics")
	f.StringVar(&o.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	f.BoolVar(&o.logJSON, "log-json", false, "log JSON lines instead of the console format")
	return cmd
}

func (o *options) validate() error {
	switch {
	case o.numClusters < 0:
		return fmt.Errorf("--num_clusters can't be negative, got %d", o.numClusters)
	case o.rmsdCutoff < 0:
		return fmt.Errorf("--rmsd_cutoff can't be negative, got %g", o.rmsdCutoff)
	case o.clusterCutoff <= 0:
		return fmt.Errorf("--cluster_cutoff must be positive, got %g", o.clusterCutoff)
	case o.markerType < 0:
		return fmt.Errorf("--marker_type can't be negative, got %d", o.markerType)
	case o.cpus < 1:
		return fmt.Errorf("--cpus must be at least 1, got %d", o.cpus)
	case len(o.structures) == 0:
		return fmt.Errorf("--structures needs at least one structure")
	}
	return nil
}

// build returns the pipeline modifiers for o.
func (o *options) build() ([]pipeline.Modifier, error) {
	popt := ptm.DefaultOptions()
	popt.RMSDCutoff(o.rmsdCutoff)
	st := make([]ptm.StructureType, 0, len(o.structures))
	for _, v := range o.structures {
		s, err := ptm.ParseStructure(v)
		if err != nil {
			return nil, err
		}
		if s == ptm.Other {
			return nil, fmt.Errorf("--structures: %s has no template", v)
		}
		st = append(st, s)
	}
	popt.Structures(st)
	sel, err := pipeline.NewSelect(o.expression)
	if err != nil {
		return nil, fmt.Errorf("--expression: %w", err)
	}
	copt := cluster.DefaultOptions()
	copt.Cutoff(o.clusterCutoff)
	return []pipeline.Modifier{
		pipeline.PTM{Options: popt},
		sel,
		pipeline.Cluster{Options: copt},
		pipeline.AddClusterCenters{N: o.numClusters, Type: o.markerType},
		pipeline.Wrap{},
	}, nil
}

func run(ctx context.Context, o *options, input, output string, stderr io.Writer) error {
	logger, err := log.New(log.Config{Level: o.logLevel, Output: stderr, JSON: o.logJSON})
	if err != nil {
		return err
	}
	ctx = logger.WithContext(ctx)
	if err := o.validate(); err != nil {
		return err
	}
	mods, err := o.build()
	if err != nil {
		return err
	}
	cfg := export.Default()
	if o.exportConfig != "" {
		if cfg, err = export.Load(o.exportConfig); err != nil {
			return err
		}
	}
	source, err := pipeline.Open(input)
	if err != nil {
		return err
	}
	defer source.Close()
	sink, err := export.New(ctx, output, cfg)
	if err != nil {
		return err
	}
	logger.Info().Str("input", input).Str("output", output).Str("format", cfg.Format).
		Int("num_clusters", o.numClusters).Float64("rmsd_cutoff", o.rmsdCutoff).Int("cpus", o.cpus).Msg("starting")
	P := &pipeline.Pipeline{Source: source, Modifiers: mods}
	popt := pipeline.DefaultOptions()
	popt.Cpus(o.cpus)
	report, err := P.Run(ctx, sink, popt)
	if err != nil {
		sink.Abort()
		return err
	}
	if err := sink.Close(); err != nil {
		return err
	}
	report.Log(&logger)
	if o.plot != "" {
		if err := chemplot.Stats(report, input, o.plot); err != nil {
			return fmt.Errorf("plot: %w", err)
		}
		logger.Info().Str("plot", o.plot).Msg("plot written")
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "apdap:", err)
		stop()
		os.Exit(1)
	}
}
