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

package rest

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mlnoga/panoview/internal/pano"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	NewRouter(2).ServeHTTP(w, req)
	return w
}

// Runs the test inside a fresh working directory holding a small panorama
func inTempDir(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	img := pano.NewImage(64, 32)
	for i := range img.Pix {
		img.Pix[i] = uint8(i % 251)
	}
	_, err := pano.Save(img, filepath.Join(dir, "pano.png"))
	require.NoError(t, err)

	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(old) })
}

func TestPing(t *testing.T) {
	w := do(t, http.MethodGet, "/api/v1/ping", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())

	_, err := uuid.Parse(w.Header().Get(requestIDHeader))
	assert.NoError(t, err)
}

func TestConvertBadRequests(t *testing.T) {
	tcs := []struct{ name, body string }{
		{"malformed", `{"filePatterns":`},
		{"no output", `{"filePatterns":["*.png"]}`},
		{"fov", `{"filePatterns":["*.png"],"output":"out.jpg","camera":{"fov":400}}`},
		{"size", `{"filePatterns":["*.png"],"output":"out.jpg","camera":{"width":-1}}`},
	}
	for _, tc := range tcs {
		w := do(t, http.MethodPost, "/api/v1/convert", tc.body)
		assert.Equal(t, http.StatusBadRequest, w.Code, tc.name)
	}
}

func TestConvert(t *testing.T) {
	inTempDir(t)
	body := `{"filePatterns":["*.png"],"output":"out%d.jpg","widths":[8,8],
		"camera":{"fov":90,"yaw":10,"pitch":5,"width":24,"height":16}}`
	w := do(t, http.MethodPost, "/api/v1/convert", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Found 1 files.")
	assert.Contains(t, w.Body.String(), "Done after")
	assert.NotContains(t, w.Body.String(), "error:")

	for _, name := range []string{"out0.jpg", "out0-1.jpg", "out0-2.jpg"} {
		_, err := os.Stat(name)
		assert.NoError(t, err, name)
	}
}

func TestConvertRejectsOutsidePaths(t *testing.T) {
	inTempDir(t)
	abs, err := filepath.Abs("pano.png")
	require.NoError(t, err)

	w := do(t, http.MethodPost, "/api/v1/convert", `{"filePatterns":["`+filepath.ToSlash(abs)+`"],"output":"out.jpg"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "outside current directory tree")
	assert.Contains(t, w.Body.String(), "error:")

	w = do(t, http.MethodPost, "/api/v1/convert", `{"filePatterns":["*.png"],"output":"../out.jpg","camera":{"width":8,"height":8}}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "error:")
	_, err = os.Stat("../out.jpg")
	assert.True(t, os.IsNotExist(err))
}

func TestCube(t *testing.T) {
	inTempDir(t)
	w := do(t, http.MethodPost, "/api/v1/cube", `{"filePatterns":["pano.png"],"output":"cube.png","size":6}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "error:")
	for _, face := range []string{"front", "right", "back", "left", "up", "down"} {
		_, err := os.Stat("cube-" + face + ".png")
		assert.NoError(t, err, face)
	}

	w = do(t, http.MethodPost, "/api/v1/cube", `{"filePatterns":["pano.png"],"output":"cube.png","size":0}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPipeline(t *testing.T) {
	inTempDir(t)
	body := `{"filePatterns":["pano.png"],"pipeline":{"type":"seq","steps":[
		{"type":"project","fov":60,"width":12,"height":10},
		{"type":"sharpen"},
		{"type":"save","filePattern":"view%d.tif"}
	]}}`
	w := do(t, http.MethodPost, "/api/v1/pipeline", body)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "error:")

	img, err := pano.NewImageFromFile("view0.tif", 0)
	require.NoError(t, err)
	assert.Equal(t, "12x10", img.DimensionsToString())
	_, err = os.Stat("view0.jpg")
	assert.NoError(t, err, "sidecar")

	w = do(t, http.MethodPost, "/api/v1/pipeline", `{"filePatterns":["pano.png"],"pipeline":{"type":"seq","steps":[{"type":"warp"}]}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = do(t, http.MethodPost, "/api/v1/pipeline", `{"filePatterns":["pano.png"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
