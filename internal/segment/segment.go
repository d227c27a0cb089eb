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

package segment

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/mlnoga/panoview/internal/pano"
	"gonum.org/v1/gonum/floats"
)

// A full-height crop of an image, spanning columns [Left, Right)
type Piece struct {
	Index int // 1-based position in the list of widths
	Left  int
	Right int
	Image *pano.Image
}

func (p Piece) Width() int {
	return p.Right - p.Left
}

// Returns n evenly spaced centers strictly inside [0, width], dividing it into n+1 equal intervals
func Centers(width, n int) []float64 {
	if n <= 0 {
		return nil
	}
	all := floats.Span(make([]float64, n+2), 0, float64(width))
	return all[1 : n+1]
}

// Column bounds of a piece of width w centered at c, clamped into [0, width]
func Bounds(width int, c float64, w int) (left, right int) {
	half := float64(w) / 2
	left = clampInt(int(math.Round(c-half)), 0, width)
	right = clampInt(int(math.Round(c+half)), 0, width)
	return left, right
}

// Returns an error wrapping pano.ErrInvalidParameters if any width is not positive
func ValidateWidths(widths []int) error {
	for i, w := range widths {
		if w <= 0 {
			return fmt.Errorf("%w: piece %d width %d must be positive", pano.ErrInvalidParameters, i+1, w)
		}
	}
	return nil
}

// Cuts the image into one full-height piece per width. Pieces are centered at evenly
// spaced positions and may overlap or leave gaps.
func Segment(img *pano.Image, widths []int) ([]Piece, error) {
	if err := ValidateWidths(widths); err != nil {
		return nil, err
	}
	centers := Centers(img.Width, len(widths))
	pieces := make([]Piece, len(widths))
	for i, w := range widths {
		left, right := Bounds(img.Width, centers[i], w)
		pieces[i] = Piece{Index: i + 1, Left: left, Right: right, Image: img.Columns(left, right)}
	}
	return pieces, nil
}

// Inserts a dash and the 1-based piece index before the extension, e.g. out.jpg -> out-2.jpg
func PiecePath(fileName string, index int) string {
	return SuffixPath(fileName, fmt.Sprintf("%d", index))
}

// Inserts a dash and the given suffix before the extension
func SuffixPath(fileName, suffix string) string {
	ext := filepath.Ext(fileName)
	return strings.TrimSuffix(fileName, ext) + "-" + suffix + ext
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
