// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

// Package dataset keeps the rolling CSV of ingested telemetry used by the
// external training pipeline. The runtime core never reads models back;
// this store only accumulates and serves rows.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"
)

const datasetFile = "training_dataset.csv"

// ErrInvalidRecord marks an ingest payload that fails validation.
var ErrInvalidRecord = errors.New("invalid telemetry record")

var header = []string{
	"building_id", "temperature", "humidity", "occupancy",
	"day_of_week", "hour", "energy_usage_kwh", "timestamp",
}

// Record is one training row.
type Record struct {
	BuildingID     int       `json:"building_id"`
	Temperature    float64   `json:"temperature"`
	Humidity       float64   `json:"humidity"`
	Occupancy      float64   `json:"occupancy"`
	DayOfWeek      int       `json:"day_of_week"`
	Hour           int       `json:"hour"`
	EnergyUsageKWh float64   `json:"energy_usage_kwh"`
	Timestamp      time.Time `json:"timestamp"`
}

// Validate checks the ranges the training pipeline depends on.
func (r Record) Validate() error {
	switch {
	case r.BuildingID < 1:
		return fmt.Errorf("%w: building_id must be positive", ErrInvalidRecord)
	case r.Occupancy < 0:
		return fmt.Errorf("%w: occupancy must be non-negative", ErrInvalidRecord)
	case r.DayOfWeek < 0 || r.DayOfWeek > 6:
		return fmt.Errorf("%w: day_of_week outside [0,6]", ErrInvalidRecord)
	case r.Hour < 0 || r.Hour > 23:
		return fmt.Errorf("%w: hour outside [0,23]", ErrInvalidRecord)
	case r.EnergyUsageKWh <= 0:
		return fmt.Errorf("%w: energy_usage_kwh must be positive", ErrInvalidRecord)
	}
	return nil
}

// Store appends records to a rolling CSV capped at maxRows.
type Store struct {
	mu      sync.Mutex
	path    string
	maxRows int
}

// NewStore creates a store rooted at dataDir.
func NewStore(dataDir string, maxRows int) *Store {
	if maxRows < 1 {
		maxRows = 1
	}
	return &Store{
		path:    filepath.Join(dataDir, datasetFile),
		maxRows: maxRows,
	}
}

// Ingest validates, stamps, and appends a record, then enforces the rolling
// row cap.
func (s *Store) Ingest(r Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.appendLocked(r); err != nil {
		return err
	}
	return s.enforceLimitLocked()
}

// Latest returns the most recent record, or a sensible default when the
// dataset is empty or unreadable.
func (s *Store) Latest() Record {
	s.mu.Lock()
	rows, err := s.readLocked()
	s.mu.Unlock()

	if err == nil && len(rows) > 0 {
		return rows[len(rows)-1]
	}

	now := time.Now().UTC()
	return Record{
		BuildingID:     1,
		Temperature:    22.0,
		Humidity:       40.0,
		Occupancy:      0.1,
		DayOfWeek:      int(now.Weekday()),
		Hour:           now.Hour(),
		EnergyUsageKWh: 150.0,
		Timestamp:      now,
	}
}

// Recent returns up to maxRows of the newest records, oldest first. An
// absent dataset yields an empty slice.
func (s *Store) Recent(maxRows int) ([]Record, error) {
	if maxRows < 1 {
		maxRows = 500
	}

	s.mu.Lock()
	rows, err := s.readLocked()
	s.mu.Unlock()

	if err != nil {
		if os.IsNotExist(err) {
			return []Record{}, nil
		}
		return nil, err
	}
	if len(rows) > maxRows {
		rows = rows[len(rows)-maxRows:]
	}
	return rows, nil
}

func (s *Store) appendLocked(r Record) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}

	_, statErr := os.Stat(s.path)
	writeHeader := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if writeHeader {
		if err := w.Write(header); err != nil {
			return err
		}
	}
	if err := w.Write(r.fields()); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// enforceLimitLocked rewrites the file keeping only the newest maxRows.
func (s *Store) enforceLimitLocked() error {
	rows, err := s.readLocked()
	if err != nil || len(rows) <= s.maxRows {
		return err
	}
	rows = rows[len(rows)-s.maxRows:]

	f, err := os.Create(s.path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.fields()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) readLocked() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = len(header)
	raw, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(raw))
	for i, fields := range raw {
		if i == 0 && fields[0] == header[0] {
			continue
		}
		r, err := parseFields(fields)
		if err != nil {
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func (r Record) fields() []string {
	return []string{
		strconv.Itoa(r.BuildingID),
		strconv.FormatFloat(r.Temperature, 'f', -1, 64),
		strconv.FormatFloat(r.Humidity, 'f', -1, 64),
		strconv.FormatFloat(r.Occupancy, 'f', -1, 64),
		strconv.Itoa(r.DayOfWeek),
		strconv.Itoa(r.Hour),
		strconv.FormatFloat(r.EnergyUsageKWh, 'f', -1, 64),
		r.Timestamp.UTC().Format(time.RFC3339),
	}
}

func parseFields(fields []string) (Record, error) {
	var r Record
	var err error
	if r.BuildingID, err = strconv.Atoi(fields[0]); err != nil {
		return r, err
	}
	if r.Temperature, err = strconv.ParseFloat(fields[1], 64); err != nil {
		return r, err
	}
	if r.Humidity, err = strconv.ParseFloat(fields[2], 64); err != nil {
		return r, err
	}
	if r.Occupancy, err = strconv.ParseFloat(fields[3], 64); err != nil {
		return r, err
	}
	if r.DayOfWeek, err = strconv.Atoi(fields[4]); err != nil {
		return r, err
	}
	if r.Hour, err = strconv.Atoi(fields[5]); err != nil {
		return r, err
	}
	if r.EnergyUsageKWh, err = strconv.ParseFloat(fields[6], 64); err != nil {
		return r, err
	}
	if r.Timestamp, err = time.Parse(time.RFC3339, fields[7]); err != nil {
		return r, err
	}
	return r, nil
}
