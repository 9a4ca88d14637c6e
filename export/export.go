/*
 * export.go, part of apdap.
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

package export

import (
	"context"
	"fmt"
	"io"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
	"github.com/rmera/apdap/traj/dcd"
	"github.com/rmera/apdap/traj/lammps"
	"github.com/rmera/apdap/traj/stf"
	"github.com/rmera/apdap/traj/xyz"
)

// Exporter writes frames to a file. The file only appears, atomically,
// when the Exporter is closed without errors. It implements chem.TrajWriter.
type Exporter struct {
	cfg     *Config
	path    string
	pending *renameio.PendingFile
	comp    io.WriteCloser
	w       chem.TrajWriter
	written int
	failed  bool
	logger  zerolog.Logger
}

// New returns an Exporter that writes to path with the arguments in C.
// The logger is taken from ctx.
func New(ctx context.Context, path string, C *Config) (*Exporter, error) {
	if C == nil {
		C = Default()
	}
	if err := C.Validate(); err != nil {
		return nil, Error{err.Error(), path, []string{"New"}, true}
	}
	if C.Format == DCD {
		if _, comp := traj.SplitCompression(path); comp != "" {
			return nil, Error{"dcd output can't be compressed", path, []string{"New"}, true}
		}
	}
	pending, err := renameio.NewPendingFile(path, renameio.WithPermissions(0o644))
	if err != nil {
		return nil, Error{fmt.Sprintf("create pending output file: %s", err), path, []string{"New"}, true}
	}
	E := &Exporter{cfg: C, path: path, pending: pending}
	E.logger = zerolog.Ctx(ctx).With().Str("output", path).Str("format", C.Format).Logger()
	return E, nil
}

// Config returns the export arguments.
func (E *Exporter) Config() *Config { return E.cfg }

// Written returns the number of frames written so far.
func (E *Exporter) Written() int { return E.written }

// Done returns true if no frame after the one with the given index
// will be exported.
func (E *Exporter) Done(index int) bool {
	l := E.cfg.Last()
	return l >= 0 && index >= l
}

// open creates the format writer. stf and dcd need the first frame
// to know the number of particles.
func (E *Exporter) open(F *chem.Frame) error {
	var err error
	switch E.cfg.Format {
	case STF:
		//stf compresses by itself.
		E.w, err = stf.NewWriter(E.pending, E.path, F, nil)
		return err
	case DCD:
		E.w, err = dcd.NewWriter(E.pending, E.path, F.Len())
		return err
	}
	E.comp, err = traj.Compress(E.pending, E.path)
	if err != nil {
		return err
	}
	prec := E.cfg.Precision
	switch E.cfg.Format {
	case LAMMPSDump:
		E.w, err = lammps.NewWriter(E.comp, E.path, E.cfg.Columns, prec)
	case XYZ:
		E.w, err = xyz.NewWriter(E.comp, E.path, E.cfg.Columns, prec)
	case TxtAttr:
		E.w, err = NewAttrWriter(E.comp, E.cfg.Columns, prec)
	default:
		err = fmt.Errorf("unknown format %q", E.cfg.Format)
	}
	return err
}

// WNext writes F if its index is selected by the export arguments,
// and ignores it otherwise.
func (E *Exporter) WNext(F *chem.Frame) error {
	if E.failed {
		return Error{"exporter failed before", E.path, []string{"WNext"}, true}
	}
	if !E.cfg.Selected(F.Index) {
		return nil
	}
	if E.w == nil {
		if err := E.open(F); err != nil {
			E.failed = true
			return Error{err.Error(), E.path, []string{"WNext"}, true}
		}
	}
	if err := E.w.WNext(F); err != nil {
		E.failed = true
		return errDecorate(err, "WNext")
	}
	E.written++
	E.logger.Debug().Int("frame", F.Index).Int("particles", F.Len()).Msg("frame exported")
	return nil
}

// Close finishes the output file and moves it into place. If no frame
// was written, or any write failed, no file is created and an error is
// returned.
func (E *Exporter) Close() error {
	defer E.pending.Cleanup()
	if E.failed {
		return Error{"not writing output after a failed write", E.path, []string{"Close"}, true}
	}
	if E.written == 0 {
		return Error{"no frame was selected for export", E.path, []string{"Close"}, true}
	}
	if err := E.w.Close(); err != nil {
		return errDecorate(err, "Close")
	}
	if E.comp != nil {
		if err := E.comp.Close(); err != nil {
			return Error{err.Error(), E.path, []string{"Close"}, true}
		}
	}
	if err := E.pending.CloseAtomicallyReplace(); err != nil {
		return Error{fmt.Sprintf("atomically replace output file: %s", err), E.path, []string{"Close"}, true}
	}
	E.logger.Info().Int("frames", E.written).Msg("output written")
	return nil
}

// Abort discards everything written so far.
func (E *Exporter) Abort() error {
	E.failed = true
	return E.pending.Cleanup()
}

// errDecorate decorates the error with the caller's name before returning it.
func errDecorate(err error, caller string) error {
	return chem.ErrDecorate(err, caller)
}

// Error is the general structure for export errors. It fullfills chem.Error
type Error struct {
	message  string
	filename string
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("export to %s: %s", err.filename, err.message)
}

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

// Critical returns whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }
