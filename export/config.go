/*
 * config.go, part of apdap.
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

// Package export writes the processed frames to the output file, in the
// format and with the columns given by a Config.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	chem "github.com/rmera/apdap"
)

// Output formats.
const (
	LAMMPSDump = "lammps/dump"
	XYZ        = "xyz"
	TxtAttr    = "txt/attr"
	STF        = "stf"
	DCD        = "dcd"
)

const defaultPrecision = 10

// needsColumns tells, for each format, whether it requires columns.
var needsColumns = map[string]bool{
	LAMMPSDump: true,
	XYZ:        true,
	TxtAttr:    true,
	STF:        false,
	DCD:        false,
}

// Formats returns the names of the supported output formats.
func Formats() []string {
	return []string{LAMMPSDump, XYZ, TxtAttr, STF, DCD}
}

// Config holds the export arguments. Pointer fields are optional; nil
// means the default value.
type Config struct {
	Format         string   `json:"format" yaml:"format"`
	Columns        []string `json:"columns,omitempty" yaml:"columns,omitempty"`
	MultipleFrames *bool    `json:"multiple_frames,omitempty" yaml:"multiple_frames,omitempty"`
	StartFrame     int      `json:"start_frame,omitempty" yaml:"start_frame,omitempty"`
	EndFrame       *int     `json:"end_frame,omitempty" yaml:"end_frame,omitempty"`
	EveryNthFrame  int      `json:"every_nth_frame,omitempty" yaml:"every_nth_frame,omitempty"`
	Precision      int      `json:"precision,omitempty" yaml:"precision,omitempty"`
	Frame          int      `json:"frame,omitempty" yaml:"frame,omitempty"`
}

// Default returns the export arguments used when no configuration file is
// given: all frames as a LAMMPS dump with identifiers, types and positions.
func Default() *Config {
	multi := true
	return &Config{
		Format:         LAMMPSDump,
		Columns:        []string{chem.PropIdentifier, chem.PropType, chem.PropPositionX, chem.PropPositionY, chem.PropPositionZ},
		MultipleFrames: &multi,
		EveryNthFrame:  1,
		Precision:      defaultPrecision,
	}
}

// Load reads the export arguments from the file name. Files ending in
// .json are decoded as JSON, anything else as YAML. The file replaces the
// defaults entirely, except for the optional keys it doesn't set.
// Unknown keys are errors.
func Load(name string) (*Config, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read export config: %w", err)
	}
	C, err := Parse(data, strings.EqualFold(filepath.Ext(name), ".json"))
	if err != nil {
		return nil, fmt.Errorf("export config %s: %w", name, err)
	}
	return C, nil
}

// Parse decodes the export arguments in data, as JSON if isJSON is
// true and as YAML otherwise, and validates them.
func Parse(data []byte, isJSON bool) (*Config, error) {
	C := new(Config)
	if isJSON {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(C); err != nil {
			return nil, fmt.Errorf("strict config parse error: %w", err)
		}
		if dec.More() {
			return nil, fmt.Errorf("config contains trailing content")
		}
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true) // Reject unknown fields
		if err := dec.Decode(C); err != nil {
			if err == io.EOF {
				return nil, fmt.Errorf("empty config")
			}
			return nil, fmt.Errorf("strict config parse error: %w", err)
		}
		if err := dec.Decode(&struct{}{}); err != io.EOF {
			return nil, fmt.Errorf("config contains multiple documents or trailing content")
		}
	}
	C.fillDefaults()
	if err := C.Validate(); err != nil {
		return nil, err
	}
	return C, nil
}

func (C *Config) fillDefaults() {
	if C.MultipleFrames == nil {
		multi := true
		C.MultipleFrames = &multi
	}
	if C.EveryNthFrame == 0 {
		C.EveryNthFrame = 1
	}
	if C.Precision == 0 {
		C.Precision = defaultPrecision
	}
}

// Validate checks the arguments for consistency.
func (C *Config) Validate() error {
	need, ok := needsColumns[C.Format]
	if !ok {
		return fmt.Errorf("unknown format %q, use one of %s", C.Format, strings.Join(Formats(), ", "))
	}
	if need && len(C.Columns) == 0 {
		return fmt.Errorf("format %s requires columns", C.Format)
	}
	if !need && len(C.Columns) > 0 {
		return fmt.Errorf("format %s does not take columns", C.Format)
	}
	if C.StartFrame < 0 || C.Frame < 0 {
		return fmt.Errorf("frame numbers can't be negative")
	}
	if C.EndFrame != nil && *C.EndFrame < C.StartFrame {
		return fmt.Errorf("end_frame %d is before start_frame %d", *C.EndFrame, C.StartFrame)
	}
	if C.EveryNthFrame < 1 {
		return fmt.Errorf("every_nth_frame must be at least 1, got %d", C.EveryNthFrame)
	}
	if C.Precision < 1 || C.Precision > 17 {
		return fmt.Errorf("precision must be between 1 and 17, got %d", C.Precision)
	}
	return nil
}

// Multiple returns whether more than one frame is exported.
func (C *Config) Multiple() bool {
	return C.MultipleFrames == nil || *C.MultipleFrames
}

// Selected returns whether the frame with the given index is exported.
func (C *Config) Selected(index int) bool {
	if !C.Multiple() {
		return index == C.Frame
	}
	if index < C.StartFrame || (C.EndFrame != nil && index > *C.EndFrame) {
		return false
	}
	return (index-C.StartFrame)%C.EveryNthFrame == 0
}

// Last returns the index of the last frame that can be exported,
// or -1 if there is no such limit.
func (C *Config) Last() int {
	if !C.Multiple() {
		return C.Frame
	}
	if C.EndFrame != nil {
		return *C.EndFrame
	}
	return -1
}
