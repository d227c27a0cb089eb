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

package pano

import (
	"runtime"
)

// Calls fn once for every row in [0, height), spreading batches of rows over at most
// maxThreads goroutines. Returns after all rows are done. fn must only write to its own row.
func ParallelRows(height, maxThreads int, fn func(row int)) {
	if maxThreads <= 0 {
		maxThreads = runtime.GOMAXPROCS(0)
	}
	if maxThreads == 1 || height <= 1 {
		for row := 0; row < height; row++ {
			fn(row)
		}
		return
	}

	batch := height / (maxThreads * 4)
	if batch < 1 {
		batch = 1
	}
	limiter := make(chan bool, maxThreads)
	for start := 0; start < height; start += batch {
		end := start + batch
		if end > height {
			end = height
		}
		limiter <- true
		go func(start, end int) {
			defer func() { <-limiter }()
			for row := start; row < end; row++ {
				fn(row)
			}
		}(start, end)
	}
	for i := 0; i < cap(limiter); i++ { // wait for goroutines to finish
		limiter <- true
	}
}
