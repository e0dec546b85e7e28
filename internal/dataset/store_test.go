// Copyright (c) 2025 GridPulse authors
// All rights reserved. Use of this source code is governed by an
// MIT-style license that can be found in the LICENSE file.

package dataset

import (
	"errors"
	"testing"
	"time"
)

func validRecord(energy float64) Record {
	return Record{
		BuildingID:     1,
		Temperature:    22.5,
		Humidity:       45.0,
		Occupancy:      12,
		DayOfWeek:      2,
		Hour:           14,
		EnergyUsageKWh: energy,
	}
}

func TestValidate(t *testing.T) {
	if err := validRecord(150).Validate(); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	for _, tc := range []struct {
		name   string
		mutate func(*Record)
	}{
		{"zero building", func(r *Record) { r.BuildingID = 0 }},
		{"negative occupancy", func(r *Record) { r.Occupancy = -1 }},
		{"day out of range", func(r *Record) { r.DayOfWeek = 7 }},
		{"hour out of range", func(r *Record) { r.Hour = 24 }},
		{"zero energy", func(r *Record) { r.EnergyUsageKWh = 0 }},
	} {
		r := validRecord(150)
		tc.mutate(&r)
		if err := r.Validate(); !errors.Is(err, ErrInvalidRecord) {
			t.Errorf("%s: expected ErrInvalidRecord, got %v", tc.name, err)
		}
	}
}

func TestIngestAndReadBack(t *testing.T) {
	s := NewStore(t.TempDir(), 100)

	rec := validRecord(150)
	rec.Timestamp = time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
	if err := s.Ingest(rec); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}

	got := s.Latest()
	if got.BuildingID != 1 || got.EnergyUsageKWh != 150 {
		t.Fatalf("Latest = %+v", got)
	}
	if !got.Timestamp.Equal(rec.Timestamp) {
		t.Fatalf("timestamp = %v, want %v", got.Timestamp, rec.Timestamp)
	}

	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
}

func TestIngestStampsMissingTimestamp(t *testing.T) {
	s := NewStore(t.TempDir(), 100)
	if err := s.Ingest(validRecord(150)); err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if s.Latest().Timestamp.IsZero() {
		t.Fatal("zero timestamp not stamped on ingest")
	}
}

func TestIngestRejectsInvalid(t *testing.T) {
	s := NewStore(t.TempDir(), 100)
	r := validRecord(150)
	r.EnergyUsageKWh = -5
	if err := s.Ingest(r); !errors.Is(err, ErrInvalidRecord) {
		t.Fatalf("expected ErrInvalidRecord, got %v", err)
	}
	if rows, _ := s.Recent(10); len(rows) != 0 {
		t.Fatalf("invalid record was persisted: %+v", rows)
	}
}

func TestRollingCap(t *testing.T) {
	s := NewStore(t.TempDir(), 3)
	for i := 1; i <= 5; i++ {
		if err := s.Ingest(validRecord(float64(i * 100))); err != nil {
			t.Fatalf("Ingest %d failed: %v", i, err)
		}
	}

	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected cap of 3 rows, got %d", len(rows))
	}
	// only the newest rows survive, oldest first
	if rows[0].EnergyUsageKWh != 300 || rows[2].EnergyUsageKWh != 500 {
		t.Fatalf("unexpected surviving rows: %+v", rows)
	}
}

func TestLatestDefaultWhenEmpty(t *testing.T) {
	s := NewStore(t.TempDir(), 100)
	got := s.Latest()
	if got.BuildingID != 1 {
		t.Fatalf("default building id = %d, want 1", got.BuildingID)
	}
	if got.Temperature != 22.0 || got.EnergyUsageKWh != 150.0 {
		t.Fatalf("unexpected default record: %+v", got)
	}
}

func TestRecentEmptyDataset(t *testing.T) {
	s := NewStore(t.TempDir(), 100)
	rows, err := s.Recent(10)
	if err != nil {
		t.Fatalf("Recent on empty store failed: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected no rows, got %d", len(rows))
	}
}

func TestRecentLimit(t *testing.T) {
	s := NewStore(t.TempDir(), 100)
	for i := 1; i <= 5; i++ {
		if err := s.Ingest(validRecord(float64(i * 100))); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := s.Recent(2)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(rows) != 2 || rows[1].EnergyUsageKWh != 500 {
		t.Fatalf("Recent(2) = %+v", rows)
	}
}
