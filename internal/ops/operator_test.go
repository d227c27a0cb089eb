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
	"os"
	"path/filepath"
	"testing"

	"github.com/mlnoga/panoview/internal/pano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext() (*Context, *bytes.Buffer) {
	var log bytes.Buffer
	return &Context{Log: &log, MemoryMB: 1024, BudgetMB: 700, MaxThreads: 2}, &log
}

func writeTestImage(t *testing.T, fileName string, id int) {
	t.Helper()
	img := pano.NewImage(6, 4)
	for i := range img.Pix {
		img.Pix[i] = uint8(i*5 + id)
	}
	_, err := pano.Save(img, fileName)
	require.NoError(t, err)
}

func TestMaterializeAll(t *testing.T) {
	errBoom := errors.New("boom")
	ins := []Promise{
		func() (*pano.Image, error) { return &pano.Image{ID: 0}, nil },
		func() (*pano.Image, error) { return nil, errBoom },
		func() (*pano.Image, error) { return &pano.Image{ID: 2}, nil },
		func() (*pano.Image, error) { return nil, pano.ErrEncoding },
	}
	outs, err := MaterializeAll(ins, 2, false)
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, pano.ErrEncoding)
	require.Len(t, outs, 2)
	assert.Equal(t, 0, outs[0].ID)
	assert.Equal(t, 2, outs[1].ID)

	outs, err = MaterializeAll(ins[:1], 0, true)
	assert.NoError(t, err)
	assert.Empty(t, outs)

	outs, err = MaterializeAll(nil, 4, false)
	assert.NoError(t, err)
	assert.Nil(t, outs)
}

func TestRemoveNils(t *testing.T) {
	a, b := &pano.Image{ID: 1}, &pano.Image{ID: 2}
	assert.Equal(t, []*pano.Image{a, b}, RemoveNils([]*pano.Image{nil, a, nil, b, nil}))
	assert.Empty(t, RemoveNils(nil))
}

func TestConcurrentJobs(t *testing.T) {
	c := &Context{BudgetMB: 100, MaxThreads: 8}
	assert.Equal(t, 8, c.ConcurrentJobs(1024*1024))
	assert.Equal(t, 4, c.ConcurrentJobs(25*1024*1024))
	assert.Equal(t, 1, c.ConcurrentJobs(1024*1024*1024))
	assert.Equal(t, 8, c.ConcurrentJobs(0))
}

func TestCheckPath(t *testing.T) {
	c := &Context{RestrictPaths: true}
	assert.NoError(t, c.CheckPath("in/pano.jpg"))
	assert.Error(t, c.CheckPath("/etc/passwd"))
	assert.Error(t, c.CheckPath("../up.jpg"))
	c.RestrictPaths = false
	assert.NoError(t, c.CheckPath("/tmp/x.jpg"))
}

func TestExpandFilePattern(t *testing.T) {
	assert.Equal(t, "out007.jpg", ExpandFilePattern("out%03d.jpg", 7))
	assert.Equal(t, "out7.jpg", ExpandFilePattern("out%d.jpg", 7))
	assert.Equal(t, "out.jpg", ExpandFilePattern("out.jpg", 7))
	assert.Equal(t, "views/0042-east.tif", ExpandFilePattern("views/%04d-east.tif", 42))
	assert.Equal(t, "50%_3.png", ExpandFilePattern("50%_%d.png", 3))
}

func TestLoadManyAndSave(t *testing.T) {
	dir := t.TempDir()
	writeTestImage(t, filepath.Join(dir, "a.png"), 0)
	writeTestImage(t, filepath.Join(dir, "b.png"), 1)

	c, log := testContext()
	seq := NewOpSequence(
		NewOpLoadMany([]string{filepath.Join(dir, "*.png")}),
		NewOpForEach(NewOpSave(filepath.Join(dir, "out%d.jpg"))),
	)
	promises, err := seq.MakePromises(nil, c)
	require.NoError(t, err)
	require.Len(t, promises, 2)

	imgs, err := MaterializeAll(promises, c.MaxThreads, false)
	require.NoError(t, err)
	require.Len(t, imgs, 2)
	for i := 0; i < 2; i++ {
		_, err := os.Stat(filepath.Join(dir, "out"+string(rune('0'+i))+".jpg"))
		assert.NoError(t, err)
	}
	assert.Contains(t, log.String(), "Found 2 files.")
	assert.Contains(t, log.String(), "Loaded 6x4 image")
	assert.Contains(t, log.String(), "Wrote 6x4 pixel JPEG quality 100")
}

func TestLoadManyNoMatches(t *testing.T) {
	c, _ := testContext()
	_, err := NewOpLoadMany([]string{filepath.Join(t.TempDir(), "*.jpg")}).MakePromises(nil, c)
	assert.ErrorIs(t, err, pano.ErrInvalidInput)
}

func TestLoadMissingFile(t *testing.T) {
	c, _ := testContext()
	promises, err := NewOpLoad(0, filepath.Join(t.TempDir(), "missing.jpg")).MakePromises(nil, c)
	require.NoError(t, err)
	_, err = promises[0]()
	assert.ErrorIs(t, err, pano.ErrInvalidInput)
}

func TestLoadRestrictedPath(t *testing.T) {
	c, _ := testContext()
	c.RestrictPaths = true
	_, err := NewOpLoad(0, "/etc/passwd").MakePromises(nil, c)
	assert.Error(t, err)
}

func TestSaveUnknownSuffix(t *testing.T) {
	c, _ := testContext()
	op := NewOpSave(filepath.Join(t.TempDir(), "out.xyz"))
	_, err := op.Apply(pano.NewImage(2, 2), c)
	assert.ErrorIs(t, err, pano.ErrEncoding)
}

func TestSequenceJSON(t *testing.T) {
	data := []byte(`{"type":"seq","steps":[
		{"type":"loadMany","active":true,"filePatterns":["in/*.jpg"]},
		{"type":"forEach","operation":{"type":"save","filePattern":"out%d.png"}}
	]}`)
	var seq OpSequence
	require.NoError(t, json.Unmarshal(data, &seq))
	require.True(t, seq.Active)
	require.Len(t, seq.Steps, 2)

	lm, ok := seq.Steps[0].(*OpLoadMany)
	require.True(t, ok, "step 0 is %T", seq.Steps[0])
	assert.Equal(t, []string{"in/*.jpg"}, lm.FilePatterns)

	fe, ok := seq.Steps[1].(*OpForEach)
	require.True(t, ok, "step 1 is %T", seq.Steps[1])
	assert.True(t, fe.Active)
	save, ok := fe.Operation.(*OpSave)
	require.True(t, ok, "operation is %T", fe.Operation)
	assert.True(t, save.Active)
	assert.Equal(t, "out%d.png", save.FilePattern)
	require.NotNil(t, save.OpUnaryBase.Apply)

	// round trip through MarshalJSON
	out, err := json.Marshal(&seq)
	require.NoError(t, err)
	var again OpSequence
	require.NoError(t, json.Unmarshal(out, &again))
	require.Len(t, again.Steps, 2)
	assert.Equal(t, "forEach", again.Steps[1].GetType())
}

func TestSequenceUnknownOperator(t *testing.T) {
	var seq OpSequence
	err := json.Unmarshal([]byte(`{"type":"seq","steps":[{"type":"teleport"}]}`), &seq)
	assert.Error(t, err)
}

func TestUnaryOnEmptyInput(t *testing.T) {
	c, _ := testContext()
	_, err := NewOpSave("x.jpg").MakePromises(nil, c)
	assert.Error(t, err)
}
