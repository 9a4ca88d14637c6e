/*
 * writer.go, part of apdap.
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
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
)

// tilt factors smaller than this are written as an orthogonal box.
const tiltTol = 1e-12

var standardColumns = map[string]string{
	chem.PropIdentifier: "id",
	chem.PropType:       "type",
	chem.PropPositionX:  "x",
	chem.PropPositionY:  "y",
	chem.PropPositionZ:  "z",
	chem.PropMass:       "mass",
}

// columnName returns the dump column header for the particle property prop.
func columnName(prop string) string {
	if c, ok := standardColumns[prop]; ok {
		return c
	}
	return strings.ReplaceAll(prop, " ", "")
}

var intProps = map[string]bool{
	chem.PropIdentifier: true,
	chem.PropType:       true,
	chem.PropStructure:  true,
	chem.PropCluster:    true,
	chem.PropSelection:  true,
}

// Writer writes frames to a LAMMPS text dump.
type Writer struct {
	w        *bufio.Writer
	columns  []string
	prec     int
	filename string
	frames   int
}

// NewWriter returns a Writer that writes the given particle property
// columns to w, with prec significant digits for real numbers. name is
// only used in error messages. The Writer does not close w.
func NewWriter(w io.Writer, name string, columns []string, prec int) (*Writer, error) {
	if len(columns) == 0 {
		return nil, traj.Error{Message: "no columns to write", Filename: name, Fmt: format, Deco: []string{"NewWriter"}, Crit: true}
	}
	if prec <= 0 {
		prec = 10
	}
	return &Writer{w: bufio.NewWriter(w), columns: columns, prec: prec, filename: name}, nil
}

func (W *Writer) errorf(caller string, f string, args ...interface{}) error {
	return traj.Error{Message: fmt.Sprintf(f, args...), Filename: W.filename, Fmt: format, Deco: []string{caller}, Crit: true}
}

// WNext writes F as the next frame of the dump.
func (W *Writer) WNext(F *chem.Frame) error {
	for _, c := range W.columns {
		if !F.HasProperty(c) {
			return W.errorf("WNext", "frame %d has no property %q", F.Index, c)
		}
	}
	fmt.Fprintf(W.w, "ITEM: TIMESTEP\n%d\nITEM: NUMBER OF ATOMS\n%d\n", F.Timestep, F.Len())
	if err := W.writeBox(F.Box); err != nil {
		return err
	}
	heads := make([]string, len(W.columns))
	for i, c := range W.columns {
		heads[i] = columnName(c)
	}
	fmt.Fprintf(W.w, "ITEM: ATOMS %s\n", strings.Join(heads, " "))
	buf := make([]byte, 0, 256)
	for i := 0; i < F.Len(); i++ {
		buf = buf[:0]
		for j, c := range W.columns {
			if j > 0 {
				buf = append(buf, ' ')
			}
			v, _ := F.Property(c, i)
			if intProps[c] {
				buf = strconv.AppendInt(buf, int64(math.Round(v)), 10)
			} else {
				buf = strconv.AppendFloat(buf, v, 'g', W.prec, 64)
			}
		}
		buf = append(buf, '\n')
		if _, err := W.w.Write(buf); err != nil {
			return W.errorf("WNext", "%s", err)
		}
	}
	W.frames++
	if err := W.w.Flush(); err != nil {
		return W.errorf("WNext", "%s", err)
	}
	return nil
}

func (W *Writer) flt(v float64) string {
	return strconv.FormatFloat(v, 'g', W.prec, 64)
}

// writeBox writes the BOX BOUNDS item. Triclinic boxes must be in the
// restricted LAMMPS form, with a along x and b in the xy plane.
func (W *Writer) writeBox(B *chem.Box) error {
	flags := make([]string, 3)
	for i := range flags {
		flags[i] = "ff"
		if B.PBC(i) {
			flags[i] = "pp"
		}
	}
	o := B.Origin()
	a, b, c := B.Vector(0), B.Vector(1), B.Vector(2)
	if math.Abs(a[1]) > tiltTol || math.Abs(a[2]) > tiltTol || math.Abs(b[2]) > tiltTol {
		return W.errorf("writeBox", "cell is not in the LAMMPS triclinic form (a along x, b in the xy plane)")
	}
	xy, xz, yz := b[0], c[0], c[1]
	hi := [3]float64{o[0] + a[0], o[1] + b[1], o[2] + c[2]}
	if math.Abs(xy) <= tiltTol && math.Abs(xz) <= tiltTol && math.Abs(yz) <= tiltTol {
		fmt.Fprintf(W.w, "ITEM: BOX BOUNDS %s\n", strings.Join(flags, " "))
		for i := 0; i < 3; i++ {
			fmt.Fprintf(W.w, "%s %s\n", W.flt(o[i]), W.flt(hi[i]))
		}
		return nil
	}
	lo := o
	lo[0] += math.Min(0, math.Min(xy, math.Min(xz, xy+xz)))
	hi[0] += math.Max(0, math.Max(xy, math.Max(xz, xy+xz)))
	lo[1] += math.Min(0, yz)
	hi[1] += math.Max(0, yz)
	fmt.Fprintf(W.w, "ITEM: BOX BOUNDS xy xz yz %s\n", strings.Join(flags, " "))
	tilts := [3]float64{xy, xz, yz}
	for i := 0; i < 3; i++ {
		fmt.Fprintf(W.w, "%s %s %s\n", W.flt(lo[i]), W.flt(hi[i]), W.flt(tilts[i]))
	}
	return nil
}

// Frames returns the number of frames written so far.
func (W *Writer) Frames() int { return W.frames }

// Close flushes the writer. It doesn't close the underlying io.Writer.
func (W *Writer) Close() error {
	if err := W.w.Flush(); err != nil {
		return W.errorf("Close", "%s", err)
	}
	return nil
}
