// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"gridpulse/internal/dataset"
)

// IngestHandler appends a telemetry record to the rolling training dataset.
func IngestHandler(store *dataset.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var rec dataset.Record
		if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := store.Ingest(rec); err != nil {
			if errors.Is(err, dataset.ErrInvalidRecord) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "ingest failed", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"status": "ingested"})
	}
}

// LatestTelemetryHandler serves the newest dataset row, or a default when
// the dataset is empty.
func LatestTelemetryHandler(store *dataset.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, store.Latest())
	}
}

// RecentTelemetryHandler serves up to ?rows= of the newest dataset rows.
func RecentTelemetryHandler(store *dataset.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rows := queryInt(r, "rows", 500)
		records, err := store.Recent(rows)
		if err != nil {
			http.Error(w, "cannot read dataset", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"count":   len(records),
			"records": records,
		})
	}
}
