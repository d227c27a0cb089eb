// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package ops

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/mlnoga/panoview/internal/pano"
	"github.com/pbnjay/memory"
)

// An execution context for operators
type Context struct {
	Log           io.Writer
	MemoryMB      int  // memory.TotalMemory()/1024/1024
	BudgetMB      int  // MemoryMB*7/10
	MaxThreads    int  `json:"maxThreads"`
	RestrictPaths bool // Only allow relative paths inside the current directory tree
}

func NewContext(log io.Writer, maxThreads int) *Context {
	memoryMB := int(memory.TotalMemory() / 1024 / 1024)
	if maxThreads <= 0 {
		maxThreads = runtime.GOMAXPROCS(0)
	}
	return &Context{
		Log:        log,
		MemoryMB:   memoryMB,
		BudgetMB:   memoryMB * 7 / 10,
		MaxThreads: maxThreads,
	}
}

// Returns how many jobs needing the given number of bytes each fit into the memory budget
// at the same time, between 1 and MaxThreads
func (c *Context) ConcurrentJobs(bytesPerJob int64) int {
	jobs := c.MaxThreads
	if c.BudgetMB > 0 && bytesPerJob > 0 {
		if fit := int(int64(c.BudgetMB) * 1024 * 1024 / bytesPerJob); fit < jobs {
			jobs = fit
		}
	}
	if jobs < 1 {
		jobs = 1
	}
	return jobs
}

// Checks a path against the context's restrictions
func (c *Context) CheckPath(p string) error {
	if c.RestrictPaths && !isPathAllowed(p) {
		return fmt.Errorf("path %s outside current directory tree", p)
	}
	return nil
}

// Returns true if a path is considered safe, i.e. not an absolute path,
// and doesn't contain the ".." characters to change to a parent directory
func isPathAllowed(p string) bool {
	if filepath.IsAbs(p) {
		return false // relative paths only
	}
	if strings.Contains(p, "..") {
		return false // no going outside the tree
	}
	return true
}

// A promise for an image. Returns a materialized image, or an error
type Promise func() (img *pano.Image, err error)

// Materializes all promises with given concurrency limit
func MaterializeAll(ins []Promise, maxThreads int, forget bool) (outs []*pano.Image, err error) {
	if len(ins) == 0 {
		return nil, nil
	}
	if maxThreads < 1 {
		maxThreads = 1
	}
	if !forget {
		outs = make([]*pano.Image, len(ins))
	}
	limiter := make(chan bool, maxThreads)
	errs := make(chan error, len(ins))
	for i, in := range ins {
		limiter <- true
		go func(i int, theIn Promise) {
			defer func() { <-limiter }()
			img, err := theIn() // materialize the promise
			if err != nil {
				errs <- err
				return
			}
			if !forget {
				outs[i] = img
			}
			errs <- nil
		}(i, in)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
	all := make([]error, 0, len(ins))
	for i := 0; i < len(ins); i++ { // collect errors
		if e := <-errs; e != nil {
			all = append(all, e)
		}
	}
	return RemoveNils(outs), errors.Join(all...)
}

// Remove nils from an array of images, editing the underlying array in place
func RemoveNils(imgs []*pano.Image) []*pano.Image {
	o := 0
	for i := 0; i < len(imgs); i++ {
		if imgs[i] != nil {
			imgs[o] = imgs[i]
			o++
		}
	}
	for i := o; i < len(imgs); i++ {
		imgs[i] = nil
	}
	return imgs[:o]
}

// An general image processing operator: takes n promises as inputs,
// and produces m promises as output or an error
type Operator interface {
	GetType() string
	IsActive() bool
	MakePromises(ins []Promise, c *Context) (outs []Promise, err error)
}

// Base type for operators, including type information for JSON serializing/deserializing
type OpBase struct {
	Type   string `json:"type"`
	Active bool   `json:"active"`
}

func (op *OpBase) GetType() string { return op.Type }
func (op *OpBase) IsActive() bool  { return op.Active }

// Factory method for subclasses of operators. For JSON serializing/deserializing
type OperatorFactory func() Operator

// Mapping from operator type strings to factory method for the type
var operatorFactories = map[string]OperatorFactory{}

// Returns the operator factory for a given type string
func GetOperatorFactory(t string) OperatorFactory {
	return operatorFactories[t]
}

// Registers a given type string for a given type of Operator, identified via an exemplar generator
func SetOperatorFactory(f OperatorFactory) {
	op := f()
	t := op.GetType()
	if GetOperatorFactory(t) != nil {
		panic(fmt.Sprintf("error: re-registering operator key %s\n", t))
	}
	operatorFactories[t] = f
}

// Unmarshals a single polymorphic operator, using the type field to pick the factory
func UnmarshalOperator(raw json.RawMessage) (Operator, error) {
	var base OpBase
	if err := json.Unmarshal(raw, &base); err != nil {
		return nil, err
	}
	factory := GetOperatorFactory(base.Type)
	if factory == nil {
		return nil, fmt.Errorf("unknown operator type '%s' in raw JSON message '%s'", base.Type, string(raw))
	}
	op := factory()
	if err := json.Unmarshal(raw, op); err != nil {
		return nil, err
	}
	return op, nil
}

// A unary image processing operator: given n promises as inputs,
// applies itself to each of them individually and returns n output promises or an error
type OperatorUnary interface {
	Operator
	Apply(img *pano.Image, c *Context) (res *pano.Image, err error)
}

// Abstract base type for unary operators. Uses golang workaround for abstract classes
// from https://golangbyexample.com/go-abstract-class/
type OpUnaryBase struct {
	OpBase
	Apply func(img *pano.Image, c *Context) (res *pano.Image, err error) `json:"-"`
}

func (op *OpUnaryBase) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 {
		return nil, fmt.Errorf("%s operator with %d inputs", op.Type, len(ins))
	}
	if !op.Active {
		return ins, nil
	}
	outs = make([]Promise, len(ins))
	for i, in := range ins {
		outs[i] = op.MakePromise(in, c)
	}
	return outs, nil
}

func (op *OpUnaryBase) MakePromise(in Promise, c *Context) (out Promise) {
	return func() (img *pano.Image, err error) {
		if img, err = in(); err != nil { // materialize input promise
			return nil, err
		}
		return op.Apply(img, c) // apply unary operator
	}
}

// Load a single image from a single filename. Takes zero inputs, produces one output
type OpLoad struct {
	OpBase
	ID       int    `json:"id"`
	FileName string `json:"fileName"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadDefault() }) } // register the operator for JSON decoding

func NewOpLoadDefault() *OpLoad { return NewOpLoad(0, "") }

func NewOpLoad(id int, fileName string) *OpLoad {
	return &OpLoad{
		OpBase:   OpBase{Type: "load", Active: true},
		ID:       id,
		FileName: fileName,
	}
}

// Load image from a file
func (op *OpLoad) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, fmt.Errorf("%s operator with non-zero input", op.Type)
	}
	if err := c.CheckPath(op.FileName); err != nil {
		return nil, err
	}
	out := func() (img *pano.Image, err error) {
		return op.Apply(c)
	}
	return []Promise{out}, nil
}

func (op *OpLoad) Apply(c *Context) (img *pano.Image, err error) {
	img, err = pano.NewImageFromFile(op.FileName, op.ID)
	if err != nil {
		return nil, err
	}

	warning := ""
	if img.Stats.DynamicRange() < 1 {
		warning = "; WARNING low dynamic range"
	} else if img.Stats.MaxClipped() > 0.05 {
		warning = fmt.Sprintf("; WARNING %.1f%% of samples clipped", img.Stats.MaxClipped()*100)
	}

	fmt.Fprintf(c.Log, "%d: Loaded %s image with %v from %s%s\n",
		img.ID, img.DimensionsToString(), img.Stats, img.FileName, warning)
	return img, nil
}

// Load many images from a slice of filename patterns with wildcards.
// Takes zero inputs, produces n outputs
type OpLoadMany struct {
	OpBase
	FilePatterns []string `json:"filePatterns"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpLoadManyDefault() }) } // register the operator for JSON decoding

func NewOpLoadManyDefault() *OpLoadMany { return NewOpLoadMany(nil) }

func NewOpLoadMany(filePatterns []string) *OpLoadMany {
	return &OpLoadMany{
		OpBase:       OpBase{Type: "loadMany", Active: true},
		FilePatterns: filePatterns,
	}
}

// Turn filename wildcards into list of file load operators
func (op *OpLoadMany) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) > 0 {
		return nil, fmt.Errorf("%s operator with non-zero input", op.Type)
	}
	for _, pattern := range op.FilePatterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", pano.ErrInvalidInput, err)
		}
		for _, match := range matches {
			if err := c.CheckPath(match); err != nil {
				fmt.Fprintf(c.Log, "Pattern match %s outside current directory tree, skipping\n", match)
				continue
			}
			opLoad := NewOpLoad(len(outs), match)
			promises, err := opLoad.MakePromises(nil, c)
			if err != nil {
				return nil, err
			}
			outs = append(outs, promises...)
		}
	}
	if len(outs) == 0 {
		return nil, fmt.Errorf("%w: %s operator with no files to load from pattern %v",
			pano.ErrInvalidInput, op.Type, op.FilePatterns)
	}
	fmt.Fprintf(c.Log, "Found %d files.\n", len(outs))
	return outs, nil
}

// Integer verb in a file pattern, such as %d or %03d
var idVerb = regexp.MustCompile(`%0?[0-9]*d`)

// Expands the first integer verb in a file pattern with the image id.
// Other percent signs are left alone
func ExpandFilePattern(pattern string, id int) string {
	loc := idVerb.FindStringIndex(pattern)
	if loc == nil {
		return pattern
	}
	return pattern[:loc[0]] + fmt.Sprintf(pattern[loc[0]:loc[1]], id) + pattern[loc[1]:]
}

// Saves given promise under a given filename, with pattern expansion for %d based on the image id.
// The format follows the file suffix. Takes one input, produces one output (the materialized but unchanged input)
type OpSave struct {
	OpUnaryBase
	FilePattern string `json:"filePattern"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpSaveDefault() }) } // register the operator for JSON decoding

func NewOpSaveDefault() *OpSave { return NewOpSave("") }

func NewOpSave(filePattern string) *OpSave {
	op := OpSave{
		OpUnaryBase: OpUnaryBase{OpBase: OpBase{Type: "save", Active: filePattern != ""}},
		FilePattern: filePattern,
	}
	op.OpUnaryBase.Apply = op.Apply // assign class method to superclass abstract method
	return &op
}

// Unmarshal the type from JSON with default values for missing entries
func (op *OpSave) UnmarshalJSON(data []byte) error {
	type defaults OpSave
	def := defaults(*NewOpSaveDefault())
	def.Active = true // an empty pattern still skips saving
	if err := json.Unmarshal(data, &def); err != nil {
		return err
	}
	*op = OpSave(def)
	op.OpUnaryBase.Apply = op.Apply // make method receiver point to op, not def
	return nil
}

func (op *OpSave) Apply(img *pano.Image, c *Context) (result *pano.Image, err error) {
	if !op.Active || op.FilePattern == "" {
		return img, nil
	}
	fileName := ExpandFilePattern(op.FilePattern, img.ID)
	if _, err := SaveImage(img, fileName, c); err != nil {
		return nil, err
	}
	return img, nil
}

// Saves an image in the format given by the file name suffix, logging every file written
func SaveImage(img *pano.Image, fileName string, c *Context) (written []string, err error) {
	if err := c.CheckPath(fileName); err != nil {
		return nil, err
	}
	format := pano.FormatFor(fileName)
	written, err = format.Write(img, fileName)
	for _, w := range written {
		fmt.Fprintf(c.Log, "%d: Wrote %s pixel %s to %s\n", img.ID, img.DimensionsToString(), format, w)
	}
	if err != nil {
		return written, fmt.Errorf("%d: %w", img.ID, err)
	}
	return written, nil
}

// Applies a sequence of operators to a promise. Number of inputs, outputs as per the chained steps
type OpSequence struct {
	OpBase
	Steps    []Operator        `json:"-"`     // the actual steps
	StepsRaw []json.RawMessage `json:"steps"` // helper for unmarshaling
}

func init() { SetOperatorFactory(func() Operator { return NewOpSequenceDefault() }) } // register the operator for JSON decoding

func NewOpSequenceDefault() *OpSequence { return NewOpSequence() }

func NewOpSequence(steps ...Operator) *OpSequence {
	return &OpSequence{
		OpBase: OpBase{Type: "seq", Active: len(steps) > 0},
		Steps:  steps,
	}
}

// Unmarshals a sequence of polymorphic operators from JSON.
// Uses temporary op.StepsRaw inspired by https://alexkappa.medium.com/json-polymorphism-in-go-4cade1e58ed1
func (op *OpSequence) UnmarshalJSON(b []byte) error {
	type alias OpSequence
	def := alias(*NewOpSequenceDefault())
	def.Active = true
	if err := json.Unmarshal(b, &def); err != nil {
		return err
	}
	*op = OpSequence(def)
	op.Steps = nil
	for _, raw := range op.StepsRaw {
		step, err := UnmarshalOperator(raw)
		if err != nil {
			return err
		}
		op.Steps = append(op.Steps, step)
	}
	op.StepsRaw = nil
	return nil
}

// Marshals a sequence with polymorphic operators to JSON.
// Uses the actual op.Steps with label "steps", and ignores op.StepsRaw
func (op *OpSequence) MarshalJSON() (bs []byte, err error) {
	buf := bytes.Buffer{}
	buf.WriteString("{\"type\":")
	inner, err := json.Marshal(op.Type)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	fmt.Fprintf(&buf, ",\"active\":%v,\"steps\":", op.Active)
	steps := op.Steps
	if steps == nil {
		steps = []Operator{}
	}
	inner, err = json.Marshal(steps)
	if err != nil {
		return nil, err
	}
	buf.Write(inner)
	buf.WriteRune('}')
	return buf.Bytes(), nil
}

func (op *OpSequence) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if !op.Active {
		return ins, nil
	}
	return op.applyRecursive(op.Steps, ins, c)
}

func (op *OpSequence) applyRecursive(steps []Operator, ins []Promise, c *Context) (outs []Promise, err error) {
	if len(steps) == 0 {
		return ins, nil
	}
	ins, err = steps[0].MakePromises(ins, c)
	if err != nil {
		return nil, err
	}
	return op.applyRecursive(steps[1:], ins, c)
}

// Applies a single operator to each input. Takes n inputs, produces n outputs
type OpForEach struct {
	OpBase
	Operation Operator `json:"operation"`
}

func init() { SetOperatorFactory(func() Operator { return NewOpForEachDefault() }) } // register the operator for JSON decoding

func NewOpForEachDefault() *OpForEach { return NewOpForEach(nil) }

func NewOpForEach(operation Operator) *OpForEach {
	return &OpForEach{
		OpBase:    OpBase{Type: "forEach", Active: operation != nil},
		Operation: operation,
	}
}

// Unmarshals the embedded polymorphic operation
func (op *OpForEach) UnmarshalJSON(b []byte) error {
	var raw struct {
		OpBase
		Operation json.RawMessage `json:"operation"`
	}
	raw.Active = true
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	op.OpBase = raw.OpBase
	op.Operation = nil
	if len(raw.Operation) > 0 && string(raw.Operation) != "null" {
		operation, err := UnmarshalOperator(raw.Operation)
		if err != nil {
			return err
		}
		op.Operation = operation
	}
	return nil
}

// Applies the operation to each input separately
func (op *OpForEach) MakePromises(ins []Promise, c *Context) (outs []Promise, err error) {
	if len(ins) == 0 || !op.Active {
		return ins, nil
	}
	if op.Operation == nil {
		return nil, fmt.Errorf("%s operator has no operation to apply", op.Type)
	}
	for _, in := range ins {
		out, err := op.Operation.MakePromises([]Promise{in}, c)
		if err != nil {
			return nil, err
		}
		if len(out) != 1 {
			return nil, fmt.Errorf("%s operator needs exactly one promise from embedded operation", op.Type)
		}
		outs = append(outs, out[0])
	}
	return outs, nil
}
