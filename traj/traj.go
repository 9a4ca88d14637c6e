/*
 * traj.go, part of apdap.
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

// Package traj contains what the trajectory formats of apdap share:
// transparent (de)compression of files by their extension and the
// end-of-trajectory error.
package traj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression extensions.
const (
	Gzip = ".gz"
	Zstd = ".zst"
)

// SplitCompression returns name without its compression extension, and
// the extension (Gzip, Zstd or "").
func SplitCompression(name string) (string, string) {
	ext := strings.ToLower(filepath.Ext(name))
	switch ext {
	case Gzip, Zstd:
		return name[:len(name)-len(ext)], ext
	}
	return name, ""
}

// Ext returns the lowercase extension of name, ignoring any compression extension.
func Ext(name string) string {
	base, _ := SplitCompression(name)
	return strings.ToLower(filepath.Ext(base))
}

// this wrapper is needed because *zstd.Decoder's Close
// doesn't return an error.
type zstdql struct {
	*zstd.Decoder
	f *os.File
}

func (z zstdql) Close() error {
	z.Decoder.Close()
	return z.f.Close()
}

type gzipql struct {
	*gzip.Reader
	f *os.File
}

func (g gzipql) Close() error {
	err := g.Reader.Close()
	if err2 := g.f.Close(); err == nil {
		err = err2
	}
	return err
}

// Open opens the file name for reading, decompressing it on the fly
// if its name ends in .gz or .zst.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	_, comp := SplitCompression(name)
	switch comp {
	case Gzip:
		r, err := gzip.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return gzipql{r, f}, nil
	case Zstd:
		r, err := zstd.NewReader(bufio.NewReader(f))
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		return zstdql{r, f}, nil
	}
	return f, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Compress returns a writer that compresses into w according to the
// extension of name (.gz or .zst). For other names, writes go directly
// to w. Closing the returned writer flushes it, but never closes w.
func Compress(w io.Writer, name string) (io.WriteCloser, error) {
	_, comp := SplitCompression(name)
	switch comp {
	case Gzip:
		return gzip.NewWriterLevel(w, gzip.DefaultCompression)
	case Zstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
	}
	return nopCloser{w}, nil
}

// LastFrameError implements chem.LastFrameError. It is returned by the
// readers when the trajectory has no more frames.
type LastFrameError struct {
	deco     []string
	fileName string
	format   string
}

// NewLastFrameError returns the error that marks the end of the
// trajectory in the file filename, of the given format.
func NewLastFrameError(filename, format, caller string) LastFrameError {
	return LastFrameError{deco: []string{caller}, fileName: filename, format: format}
}

func (E LastFrameError) Error() string { return "EOF" }

// Critical is always false for the last frame error.
func (E LastFrameError) Critical() bool { return false }

// FileName returns the file the trajectory was read from.
func (E LastFrameError) FileName() string { return E.fileName }

// Format returns the format of the trajectory.
func (E LastFrameError) Format() string { return E.format }

// Decorate adds new information to the error.
func (E LastFrameError) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

// NormalLastFrameTermination does nothing. It marks the type as chem.LastFrameError.
func (E LastFrameError) NormalLastFrameTermination() {}

// Error is the general structure for trajectory errors. It fullfills chem.Error and chem.TrajError
type Error struct {
	Message  string
	Filename string //the input file that has problems, or empty string if none.
	Fmt      string
	Line     int //0 if not known.
	Deco     []string
	Crit     bool
}

func (err Error) Error() string {
	if err.Line > 0 {
		return fmt.Sprintf("%s file %s, line %d: %s", err.Fmt, err.Filename, err.Line, err.Message)
	}
	return fmt.Sprintf("%s file %s: %s", err.Fmt, err.Filename, err.Message)
}

// Decorate adds new information to the error
func (err Error) Decorate(deco string) []string {
	if deco != "" {
		err.Deco = append(err.Deco, deco)
	}
	return err.Deco
}

// FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.Filename }

// Format returns the format of the file associated to the error
func (err Error) Format() string { return err.Fmt }

// Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.Crit }
