/*
 * selection.go, part of apdap.
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

// Package selection selects particles with boolean expressions over their
// properties, such as "StructureType == 0" or "Position.Z > 10 && Cluster != 0".
// Expressions use the HCL expression syntax.
package selection

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"

	chem "github.com/rmera/apdap"
)

// NumSelectedAttribute is the frame attribute with the number of selected particles.
const NumSelectedAttribute = "SelectExpression.num_selected"

// variable names for the standard particle properties.
var standardVars = map[string]string{
	"ParticleIdentifier": chem.PropIdentifier,
	"ParticleType":       chem.PropType,
	"Mass":               chem.PropMass,
	"StructureType":      chem.PropStructure,
	"RMSD":               chem.PropRMSD,
	"Cluster":            chem.PropCluster,
	"Selection":          chem.PropSelection,
}

const positionVar = "Position"

var functions = map[string]function.Function{
	"abs":   stdlib.AbsoluteFunc,
	"min":   stdlib.MinFunc,
	"max":   stdlib.MaxFunc,
	"floor": stdlib.FloorFunc,
	"ceil":  stdlib.CeilFunc,
}

// VarName returns the name under which the particle property prop
// can be used in expressions.
func VarName(prop string) string {
	for k, v := range standardVars {
		if v == prop {
			return k
		}
	}
	var b strings.Builder
	for i, r := range prop {
		switch {
		case unicode.IsLetter(r) || r == '_':
			b.WriteRune(r)
		case unicode.IsDigit(r):
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Expression is a compiled selection expression. It is safe to use
// from several goroutines.
type Expression struct {
	src  string
	expr hclsyntax.Expression
	vars []string
}

// Compile parses src into an Expression.
func Compile(src string) (*Expression, error) {
	if strings.TrimSpace(src) == "" {
		return nil, Error{"empty expression", src, []string{"Compile"}, true}
	}
	expr, diags := hclsyntax.ParseExpression([]byte(src), "expression", hcl.Pos{Line: 1, Column: 1})
	if diags.HasErrors() {
		return nil, Error{diags.Error(), src, []string{"Compile"}, true}
	}
	seen := make(map[string]bool)
	var vars []string
	for _, t := range expr.Variables() {
		name := t.RootName()
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	sort.Strings(vars)
	return &Expression{src: src, expr: expr, vars: vars}, nil
}

// String returns the source of the expression.
func (E *Expression) String() string { return E.src }

// Variables returns the names of the variables used by the expression.
func (E *Expression) Variables() []string { return E.vars }

// getter returns the function giving the value of the variable name for
// each particle in F.
func getter(F *chem.Frame, name string) (func(int) cty.Value, error) {
	if name == positionVar {
		return func(i int) cty.Value {
			v := F.Coords.Vec(i)
			return cty.ObjectVal(map[string]cty.Value{
				"X": cty.NumberFloatVal(v[0]),
				"Y": cty.NumberFloatVal(v[1]),
				"Z": cty.NumberFloatVal(v[2]),
			})
		}, nil
	}
	prop, ok := standardVars[name]
	if !ok {
		for _, v := range F.ExtraOrder {
			if VarName(v) == name {
				prop = v
				ok = true
				break
			}
		}
	}
	if !ok || !F.HasProperty(prop) {
		return nil, fmt.Errorf("unknown variable %q; available: %s", name, strings.Join(available(F), ", "))
	}
	return func(i int) cty.Value {
		v, _ := F.Property(prop, i)
		return cty.NumberFloatVal(v)
	}, nil
}

func available(F *chem.Frame) []string {
	ret := []string{positionVar}
	for _, v := range F.PropertyNames() {
		switch v {
		case chem.PropPositionX, chem.PropPositionY, chem.PropPositionZ:
			continue
		}
		ret = append(ret, VarName(v))
	}
	return ret
}

// Eval evaluates the expression for every particle of F, and returns
// 1 for the particles where it is true and 0 elsewhere.
func (E *Expression) Eval(F *chem.Frame) ([]int, error) {
	getters := make(map[string]func(int) cty.Value, len(E.vars))
	for _, v := range E.vars {
		g, err := getter(F, v)
		if err != nil {
			return nil, Error{err.Error(), E.src, []string{"Eval"}, true}
		}
		getters[v] = g
	}
	vars := make(map[string]cty.Value, len(getters))
	ctx := &hcl.EvalContext{Variables: vars, Functions: functions}
	ret := make([]int, F.Len())
	for i := range ret {
		for k, g := range getters {
			vars[k] = g(i)
		}
		val, diags := E.expr.Value(ctx)
		if diags.HasErrors() {
			return nil, Error{diags.Error(), E.src, []string{"Eval"}, true}
		}
		if val.IsNull() || !val.IsKnown() || !val.Type().Equals(cty.Bool) {
			return nil, Error{fmt.Sprintf("expression must give a boolean, got %s", val.Type().FriendlyName()), E.src, []string{"Eval"}, true}
		}
		if val.True() {
			ret[i] = 1
		}
	}
	return ret, nil
}

// Frame selects the particles of F for which the expression is true,
// replacing any previous selection.
func Frame(F *chem.Frame, E *Expression) error {
	sel, err := E.Eval(F)
	if err != nil {
		return chem.ErrDecorate(err, fmt.Sprintf("Frame %d", F.Index))
	}
	n := 0
	for _, v := range sel {
		n += v
	}
	F.Selection = sel
	F.SetAttribute(NumSelectedAttribute, float64(n))
	return nil
}

// Error is the general structure for selection errors. It fullfills chem.Error
type Error struct {
	message    string
	expression string
	deco       []string
	critical   bool
}

func (err Error) Error() string {
	return fmt.Sprintf("selection %q: %s", err.expression, err.message)
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
