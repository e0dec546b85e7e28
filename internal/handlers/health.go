// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package handlers

import (
	"fmt"
	"net/http"
	"os"
)

const version = "0.3.0"

// Health returns basic health info.
func Health(w http.ResponseWriter, r *http.Request) {
	hostname, _ := os.Hostname()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(fmt.Sprintf("{\"status\":\"ok\",\"version\":%q,\"host\":%q}", version, hostname)))
}
