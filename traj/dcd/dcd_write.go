/*
 * dcd_write.go, part of apdap.
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

package dcd

import (
	"encoding/binary"
	"fmt"
	"io"

	chem "github.com/rmera/apdap"
)

const title = "Created by apdap"

// Writer is a Charmm/NAMD binary trajectory opened for writing.
type Writer struct {
	natoms    int32
	writable  bool //Is it ready to be written on
	filename  string
	frames    int32
	dcd       io.WriteSeeker //The DCD file
	dcdFields [3][]float32
	endian    binary.ByteOrder
}

// NewWriter initializes a DCD trajectory with natoms atoms per frame, and
// writes its header to w. DCD stores the number of frames at the
// beginning, so w must be seekable. Every frame carries its unit cell.
// name is only used in error messages. The Writer does not close w.
func NewWriter(w io.WriteSeeker, name string, natoms int) (*Writer, error) {
	D := &Writer{natoms: int32(natoms), dcd: w, filename: name, endian: binary.LittleEndian}
	if err := D.initWrite(); err != nil {
		return nil, errDecorate(err, "NewWriter")
	}
	for i := range D.dcdFields {
		D.dcdFields[i] = make([]float32, natoms)
	}
	return D, nil
}

// Len returns the number of atoms per frame.
func (D *Writer) Len() int { return int(D.natoms) }

// Close marks the writer as closed. The underlying io.WriteSeeker is not closed.
func (D *Writer) Close() error {
	D.writable = false
	return nil
}

func (D *Writer) initWrite() error {
	//if it's zero it means it hasn't been set.
	if D.natoms <= 0 {
		return Error{"Trajectory not initialized correctly, the number of atoms must be positive", D.filename, []string{"initWrite"}, true}
	}
	var icntrl [20]int32
	icntrl[0] = 0  //frames in the file. Updated after every write.
	icntrl[1] = 0  //initial step
	icntrl[2] = 1  //step interval (nsavc)
	icntrl[10] = 1 //unit cell present
	icntrl[19] = 24 //charmm version, let's say, 24
	var ttl [2 * mAXTITLE]byte
	copy(ttl[:], title)
	for j := len(title); j < len(ttl); j++ {
		ttl[j] = ' '
	}
	titleBytes := int32(4 + len(ttl))
	data := []interface{}{
		int32(headerBytes), []byte("CORD"), icntrl[:9],
		float32(1), //delta time, in place of icntrl[9]
		icntrl[10:],
		int32(headerBytes),
		titleBytes, int32(2), ttl[:], titleBytes,
		int32(4), D.natoms, int32(4),
	}
	for _, v := range data {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "initWrite"}, true}
		}
	}
	D.writable = true
	return nil
}

// WNext writes the coordinates and unit cell of F as the next frame.
// The box origin is not stored.
func (D *Writer) WNext(F *chem.Frame) error {
	if !D.writable {
		return Error{TrajUnIni, D.filename, []string{"WNext"}, true}
	}
	if F == nil || F.Coords == nil {
		return Error{"got nil coordinates", D.filename, []string{"WNext"}, true}
	}
	if int32(F.Coords.NVecs()) != D.natoms {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", F.Coords.NVecs(), D.natoms), D.filename, []string{"WNext"}, true}
	}
	for i := 0; i < int(D.natoms); i++ {
		v := F.Coords.Vec(i)
		D.dcdFields[0][i] = float32(v[0])
		D.dcdFields[1][i] = float32(v[1])
		D.dcdFields[2][i] = float32(v[2])
	}
	if err := D.wnextRaw(boxToCell(F.Box)); err != nil {
		return errDecorate(err, "WNext")
	}
	D.frames++
	if err := D.updateFrames(); err != nil {
		return errDecorate(err, "WNext")
	}
	return nil
}

func (D *Writer) wnextRaw(cell [6]float64) error {
	wrapbinerr := func(err error) error {
		return Error{err.Error(), D.filename, []string{"binary.Write", "wnextRaw"}, true}
	}
	if err := binary.Write(D.dcd, D.endian, int32(cellBlock)); err != nil {
		return wrapbinerr(err)
	}
	if err := binary.Write(D.dcd, D.endian, cell); err != nil {
		return wrapbinerr(err)
	}
	if err := binary.Write(D.dcd, D.endian, int32(cellBlock)); err != nil {
		return wrapbinerr(err)
	}
	for _, block := range D.dcdFields {
		if err := D.writeFloat32Block(block); err != nil {
			return errDecorate(err, "wnextRaw")
		}
	}
	return nil
}

// Writes a block of float32s to the file, surrounded by its size
func (D *Writer) writeFloat32Block(block []float32) error {
	blocksize := int32(len(block)) * 4
	for _, v := range []interface{}{blocksize, block, blocksize} {
		if err := binary.Write(D.dcd, D.endian, v); err != nil {
			return Error{err.Error(), D.filename, []string{"binary.Write", "writeFloat32Block"}, true}
		}
	}
	return nil
}

// DCD requires the number of frames at the begining.
func (D *Writer) updateFrames() error {
	currentoffset, err := D.dcd.Seek(0, io.SeekCurrent) //we'll need it to go back
	if err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	//the frame count goes right after the first block size and the magic number.
	if _, err = D.dcd.Seek(8, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	if err := binary.Write(D.dcd, D.endian, D.frames); err != nil {
		return Error{err.Error(), D.filename, []string{"binary.Write", "updateFrames"}, true}
	}
	//we go back to the end of the last frame.
	if _, err = D.dcd.Seek(currentoffset, io.SeekStart); err != nil {
		return Error{err.Error(), D.filename, []string{"dcd.Seek", "updateFrames"}, true}
	}
	return nil
}
