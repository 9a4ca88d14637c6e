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

package xyz

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/apdap"
	"github.com/rmera/apdap/traj"
)

var standardProps = map[string]string{
	chem.PropIdentifier: "id",
	chem.PropType:       "type",
	chem.PropMass:       "mass",
}

// propName returns the extended XYZ property name for the particle property prop.
func propName(prop string) string {
	if c, ok := standardProps[prop]; ok {
		return c
	}
	r := strings.NewReplacer(" ", "", ":", "_", "=", "_", "\"", "")
	return r.Replace(prop)
}

func isInt(prop string) bool {
	switch prop {
	case chem.PropIdentifier, chem.PropType, chem.PropStructure, chem.PropCluster, chem.PropSelection:
		return true
	}
	return false
}

// Writer writes frames as extended XYZ.
type Writer struct {
	w        *bufio.Writer
	columns  []string
	header   string
	prec     int
	filename string
}

// NewWriter returns a Writer for the given particle property columns,
// with prec significant digits for real numbers. Position.X, Position.Y
// and Position.Z, when given in that order, are written as the "pos"
// property. The Writer does not close w.
func NewWriter(w io.Writer, name string, columns []string, prec int) (*Writer, error) {
	if len(columns) == 0 {
		return nil, traj.Error{Message: "no columns to write", Filename: name, Fmt: format, Deco: []string{"NewWriter"}, Crit: true}
	}
	if prec <= 0 {
		prec = 10
	}
	var props []string
	for i := 0; i < len(columns); i++ {
		c := columns[i]
		if c == chem.PropPositionX && i+2 < len(columns) && columns[i+1] == chem.PropPositionY && columns[i+2] == chem.PropPositionZ {
			props = append(props, "pos:R:3")
			i += 2
			continue
		}
		kind := "R"
		if isInt(c) {
			kind = "I"
		}
		props = append(props, propName(c)+":"+kind+":1")
	}
	return &Writer{w: bufio.NewWriter(w), columns: columns, header: strings.Join(props, ":"), prec: prec, filename: name}, nil
}

func (W *Writer) errorf(caller string, f string, args ...interface{}) error {
	return traj.Error{Message: fmt.Sprintf(f, args...), Filename: W.filename, Fmt: format, Deco: []string{caller}, Crit: true}
}

func (W *Writer) flt(v float64) string {
	return strconv.FormatFloat(v, 'g', W.prec, 64)
}

func pbcFlag(b bool) string {
	if b {
		return "T"
	}
	return "F"
}

// WNext writes F as the next frame.
func (W *Writer) WNext(F *chem.Frame) error {
	for _, c := range W.columns {
		if !F.HasProperty(c) {
			return W.errorf("WNext", "frame %d has no property %q", F.Index, c)
		}
	}
	fmt.Fprintf(W.w, "%d\n", F.Len())
	var lat []string
	for i := 0; i < 3; i++ {
		v := F.Box.Vector(i)
		for _, x := range v {
			lat = append(lat, W.flt(x))
		}
	}
	o := F.Box.Origin()
	fmt.Fprintf(W.w, "Lattice=\"%s\" Origin=\"%s %s %s\" pbc=\"%s %s %s\" Properties=%s Timestep=%d\n",
		strings.Join(lat, " "), W.flt(o[0]), W.flt(o[1]), W.flt(o[2]),
		pbcFlag(F.Box.PBC(0)), pbcFlag(F.Box.PBC(1)), pbcFlag(F.Box.PBC(2)),
		W.header, F.Timestep)
	buf := make([]byte, 0, 256)
	for i := 0; i < F.Len(); i++ {
		buf = buf[:0]
		for j, c := range W.columns {
			if j > 0 {
				buf = append(buf, ' ')
			}
			v, _ := F.Property(c, i)
			if isInt(c) {
				buf = strconv.AppendInt(buf, int64(v), 10)
			} else {
				buf = strconv.AppendFloat(buf, v, 'g', W.prec, 64)
			}
		}
		buf = append(buf, '\n')
		if _, err := W.w.Write(buf); err != nil {
			return W.errorf("WNext", "%s", err)
		}
	}
	if err := W.w.Flush(); err != nil {
		return W.errorf("WNext", "%s", err)
	}
	return nil
}

// Close flushes the writer. It doesn't close the underlying io.Writer.
func (W *Writer) Close() error {
	if err := W.w.Flush(); err != nil {
		return W.errorf("Close", "%s", err)
	}
	return nil
}
