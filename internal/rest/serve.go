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
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	nl "github.com/mlnoga/panoview/internal"
	"github.com/mlnoga/panoview/internal/ops"
	"github.com/mlnoga/panoview/internal/ops/rect"
)

const requestIDHeader = "X-Request-Id"

// Listens on addr, e.g. ":8080", and serves the API until an error occurs
func Serve(addr string, maxThreads int) error {
	nl.LogPrintf("Listening on %s\n", addr)
	return NewRouter(maxThreads).Run(addr)
}

// Builds the API routes. Each request renders with up to maxThreads threads
func NewRouter(maxThreads int) *gin.Engine {
	s := &server{maxThreads: maxThreads}
	r := gin.New()
	r.Use(gin.LoggerWithWriter(nl.LogWriter()), gin.Recovery(), requestID)
	api := r.Group("/api")
	{
		v1 := api.Group("/v1")
		{
			v1.GET("/ping", getPing)
			v1.POST("/convert", s.postConvert)
			v1.POST("/cube", s.postCube)
			v1.POST("/pipeline", s.postPipeline)
		}
	}
	return r
}

type server struct {
	maxThreads int
}

// Tags each request with a fresh id, returned in the response headers
func requestID(c *gin.Context) {
	id := uuid.New().String()
	c.Set("requestID", id)
	c.Header(requestIDHeader, id)
	c.Next()
}

func getPing(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Serializes writes from concurrently running operators, and flushes after each one
type flushWriter struct {
	mu sync.Mutex
	w  gin.ResponseWriter
}

func (fw *flushWriter) Write(p []byte) (n int, err error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	n, err = fw.w.Write(p)
	fw.w.Flush()
	return n, err
}

// Switches the response to a streamed plain text log, and returns an operator context writing to it
func (s *server) startLog(c *gin.Context, args interface{}) (*ops.Context, error) {
	c.Header("Content-Type", "text/plain")
	c.Status(http.StatusOK)
	log := &flushWriter{w: c.Writer}

	ctx := ops.NewContext(log, s.maxThreads)
	ctx.RestrictPaths = true
	fmt.Fprintf(log, "Request %s\n", c.GetString("requestID"))
	return ctx, printArgs(log, "Arguments:\n", "\n", args)
}

func printArgs(logWriter io.Writer, prefix, suffix string, args interface{}) error {
	m, err := json.MarshalIndent(args, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintf(logWriter, "%s%s%s", prefix, string(m), suffix)
	return nil
}

func finish(ctx *ops.Context, start time.Time, err error) {
	if err != nil {
		fmt.Fprintf(ctx.Log, "error: %s\n", err.Error())
		return
	}
	fmt.Fprintf(ctx.Log, "Done after %v\n", time.Since(start).Round(time.Millisecond))
}

type postConvertArgs struct {
	FilePatterns []string `json:"filePatterns"`
	rect.ConvertSettings
}

func (s *server) postConvert(c *gin.Context) {
	args := postConvertArgs{ConvertSettings: rect.DefaultConvertSettings()}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	seq, err := args.Sequence()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	ctx, err := s.startLog(c, args)
	if err == nil {
		err = rect.Run(args.FilePatterns, seq, args.Camera, ctx)
	}
	finish(ctx, start, err)
}

type postCubeArgs struct {
	FilePatterns []string `json:"filePatterns"`
	Output       string   `json:"output"`
	Size         int      `json:"size"`
}

func (s *server) postCube(c *gin.Context) {
	args := postCubeArgs{Size: rect.DefaultCubeSize}
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.Output == "" || args.Size <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cube needs an output file and a positive size"})
		return
	}

	start := time.Now()
	ctx, err := s.startLog(c, args)
	if err == nil {
		seq := ops.NewOpSequence(rect.NewOpCube(args.Size, args.Output))
		err = rect.Run(args.FilePatterns, seq, rect.CubeFaces[0].Camera(args.Size), ctx)
	}
	finish(ctx, start, err)
}

type postPipelineArgs struct {
	FilePatterns []string         `json:"filePatterns"`
	Pipeline     *ops.OpSequence `json:"pipeline"`
}

func (s *server) postPipeline(c *gin.Context) {
	var args postPipelineArgs
	if err := c.ShouldBindJSON(&args); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if args.Pipeline == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing pipeline"})
		return
	}

	start := time.Now()
	ctx, err := s.startLog(c, args)
	if err == nil {
		cam := rect.DefaultConvertSettings().Camera
		for _, step := range args.Pipeline.Steps {
			if p, ok := step.(*rect.OpProject); ok {
				cam = p.Camera
			}
		}
		err = rect.Run(args.FilePatterns, args.Pipeline, cam, ctx)
	}
	finish(ctx, start, err)
}
