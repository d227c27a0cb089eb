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

package internal

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// Singleton log writer. Writes to stdout, and optionally to a file.
// Does not add prefixes, or force newlines.

var (
	logMutex  sync.Mutex
	logFile   *bufio.Writer // The optional additional file to log into
	logFileOS *os.File
	logStdout io.Writer = os.Stdout
)

// Enables logging to file, closing any previous log file
func LogAlsoToFile(fileName string) error {
	logMutex.Lock()
	defer logMutex.Unlock()
	if err := closeLogFile(); err != nil {
		return err
	}
	f, err := os.OpenFile(fileName, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0666)
	if err != nil {
		return err
	}
	logFileOS, logFile = f, bufio.NewWriter(f)
	return nil
}

func closeLogFile() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Flush()
	if cerr := logFileOS.Close(); err == nil {
		err = cerr
	}
	logFile, logFileOS = nil, nil
	return err
}

type teeWriter struct{}

func (teeWriter) Write(p []byte) (n int, err error) {
	logMutex.Lock()
	defer logMutex.Unlock()
	n, err = logStdout.Write(p)
	if err != nil || logFile == nil {
		return n, err
	}
	return logFile.Write(p)
}

// Returns a writer which logs to stdout and the optional log file. Safe for concurrent use
func LogWriter() io.Writer {
	return teeWriter{}
}

func LogPrint(args ...interface{}) (n int, err error) {
	return fmt.Fprint(LogWriter(), args...)
}

func LogPrintln(args ...interface{}) (n int, err error) {
	return fmt.Fprintln(LogWriter(), args...)
}

func LogPrintf(format string, args ...interface{}) (n int, err error) {
	return fmt.Fprintf(LogWriter(), format, args...)
}

// Flushes the log file to disk
func LogSync() error {
	logMutex.Lock()
	defer logMutex.Unlock()
	if logFile == nil {
		return nil
	}
	if err := logFile.Flush(); err != nil {
		return err
	}
	return logFileOS.Sync()
}

// Flushes and closes the log file, if any. Later output goes to stdout only
func LogClose() error {
	logMutex.Lock()
	defer logMutex.Unlock()
	return closeLogFile()
}
