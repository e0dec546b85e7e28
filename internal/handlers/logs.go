// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package handlers

import (
	"bufio"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	defaultLogLines = 150
	minLogLines     = 20
	maxLogLines     = 1000
)

var validLogSources = map[string]bool{
	"application": true,
	"errors":      true,
}

// LogsHandler tails a named log file from logDir. The source must be one of
// "application" or "errors"; anything else is a 400, a missing file a 404.
func LogsHandler(logDir string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		source := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("source")))
		if source == "" {
			source = "application"
		}
		if !validLogSources[source] {
			http.Error(w, fmt.Sprintf("unsupported log source: %s", source), http.StatusBadRequest)
			return
		}

		lines := queryInt(r, "lines", defaultLogLines)
		if lines < minLogLines {
			lines = minLogLines
		}
		if lines > maxLogLines {
			lines = maxLogLines
		}

		logPath := filepath.Join(logDir, source+".log")
		tail, err := tailLines(logPath, lines)
		if err != nil {
			if os.IsNotExist(err) {
				http.Error(w, fmt.Sprintf("log file not found: %s", logPath), http.StatusNotFound)
				return
			}
			http.Error(w, "cannot read log file", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"status":     "ok",
			"source":     source,
			"path":       logPath,
			"line_count": len(tail),
			"lines":      tail,
			"timestamp":  time.Now().UTC(),
		})
	}
}

// tailLines returns the last n lines of a file, keeping only a bounded
// window in memory while scanning.
func tailLines(path string, n int) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf := make([]string, 0, n)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		if len(buf) == n {
			copy(buf, buf[1:])
			buf = buf[:n-1]
		}
		buf = append(buf, scanner.Text())
	}
	return buf, scanner.Err()
}
