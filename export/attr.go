/*
 * attr.go, part of apdap.
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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/apdap"
)

// Attributes every frame has, besides the ones computed by the analysis.
const (
	AttrTimestep    = "Timestep"
	AttrSourceFrame = "SourceFrame"
	AttrParticles   = "NumParticles"
)

// AttrWriter writes a table with one row per frame and one column per
// global attribute.
type AttrWriter struct {
	w       *bufio.Writer
	columns []string
	prec    int
	header  bool
}

// NewAttrWriter returns an AttrWriter for the given attribute columns, with
// prec significant digits. It does not close w.
func NewAttrWriter(w io.Writer, columns []string, prec int) (*AttrWriter, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("no attributes to write")
	}
	return &AttrWriter{w: bufio.NewWriter(w), columns: columns, prec: prec}, nil
}

func attribute(F *chem.Frame, name string) (float64, bool) {
	switch name {
	case AttrTimestep:
		return float64(F.Timestep), true
	case AttrSourceFrame:
		return float64(F.Index), true
	case AttrParticles:
		return float64(F.Len()), true
	}
	return F.Attribute(name)
}

// WNext writes the attributes of F as a new row.
func (A *AttrWriter) WNext(F *chem.Frame) error {
	if !A.header {
		quoted := make([]string, len(A.columns))
		for i, c := range A.columns {
			quoted[i] = strconv.Quote(c)
		}
		fmt.Fprintf(A.w, "# %s\n", strings.Join(quoted, " "))
		A.header = true
	}
	row := make([]string, len(A.columns))
	for i, c := range A.columns {
		v, ok := attribute(F, c)
		if !ok {
			return fmt.Errorf("frame %d has no attribute %q", F.Index, c)
		}
		row[i] = strconv.FormatFloat(v, 'g', A.prec, 64)
	}
	if _, err := fmt.Fprintln(A.w, strings.Join(row, " ")); err != nil {
		return err
	}
	return A.w.Flush()
}

// Close flushes the writer.
func (A *AttrWriter) Close() error {
	return A.w.Flush()
}
