package export

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

func testAssets() []dataset.Asset {
	return []dataset.Asset{
		{ID: "ASSET_0001", PHIFlag: true, EncryptionStatus: dataset.EncryptionPlain},
		{ID: "ASSET_0002", PHIFlag: false, EncryptionStatus: dataset.EncryptionEncrypted},
	}
}

func testEvents() []dataset.AccessEvent {
	return []dataset.AccessEvent{
		{
			Timestamp:        time.Date(2024, 3, 15, 22, 5, 0, 0, time.UTC),
			UserID:           "USER_042",
			AssetID:          "ASSET_0001",
			AccessType:       dataset.AccessRead,
			IPRegion:         dataset.RegionEU,
			PHIFlag:          true,
			EncryptionStatus: dataset.EncryptionPlain,
			PolicyViolation:  true,
		},
		{
			Timestamp:        time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC),
			UserID:           "USER_007",
			AssetID:          "ASSET_0002",
			AccessType:       dataset.AccessWrite,
			IPRegion:         dataset.RegionUS,
			PHIFlag:          false,
			EncryptionStatus: dataset.EncryptionEncrypted,
			PolicyViolation:  false,
		},
	}
}

func TestNewWriter_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	info, err := os.Stat(dir)
	if err != nil {
		t.Fatalf("output directory not created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s is not a directory", dir)
	}
}

func TestNewWriter_ExistingDirectoryIsFine(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir); err != nil {
		t.Fatalf("NewWriter() on existing dir error = %v", err)
	}
}

func TestWriteAssets(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	path, size, err := w.WriteAssets(testAssets())
	if err != nil {
		t.Fatalf("WriteAssets() error = %v", err)
	}
	if filepath.Base(path) != MetadataFileName {
		t.Errorf("path = %q, want base %q", path, MetadataFileName)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if int64(len(data)) != size {
		t.Errorf("reported size %d, file has %d bytes", size, len(data))
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 CSV rows (header + 2 data), got %d", len(records))
	}

	for i, col := range MetadataHeader {
		if records[0][i] != col {
			t.Errorf("header column %d = %q, want %q", i, records[0][i], col)
		}
	}

	if records[1][0] != "ASSET_0001" || records[1][1] != "True" || records[1][2] != "Plain" {
		t.Errorf("first data row = %v, want [ASSET_0001 True Plain]", records[1])
	}
	if records[2][1] != "False" {
		t.Errorf("second row PHI flag = %q, want False", records[2][1])
	}
}

func TestWriteEvents(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	path, _, err := w.WriteEvents(testEvents())
	if err != nil {
		t.Fatalf("WriteEvents() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 CSV rows (header + 2 data), got %d", len(records))
	}

	for i, col := range AccessLogsHeader {
		if records[0][i] != col {
			t.Errorf("header column %d = %q, want %q", i, records[0][i], col)
		}
	}

	want := []string{"2024-03-15 22:05:00", "USER_042", "ASSET_0001", "Read", "EU", "True", "Plain", "1"}
	for i, v := range want {
		if records[1][i] != v {
			t.Errorf("row 1 column %d = %q, want %q", i, records[1][i], v)
		}
	}
	if records[2][7] != "0" {
		t.Errorf("row 2 violation = %q, want 0", records[2][7])
	}
}

func TestWriteManifest(t *testing.T) {
	w, err := NewWriter(t.TempDir())
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}

	in := Manifest{
		RunID:         "run-1",
		GeneratedAt:   time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Seed:          42,
		AssetCount:    2,
		EventCount:    2,
		AnomalyCount:  1,
		Violations:    1,
		ViolationRate: 0.5,
		Injected:      map[string]int{"non_us": 1},
		Files: map[string]FileStat{
			"metadata": {Path: "data/metadata.csv", Rows: 2, SizeBytes: 100},
		},
	}

	path, _, err := w.WriteManifest(in)
	if err != nil {
		t.Fatalf("WriteManifest() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read manifest: %v", err)
	}

	var out Manifest
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("failed to parse manifest JSON: %v", err)
	}
	if out.RunID != in.RunID || out.Seed != in.Seed || out.Violations != in.Violations {
		t.Errorf("round-tripped manifest = %+v, want %+v", out, in)
	}
	if out.Injected["non_us"] != 1 {
		t.Errorf("injected non_us = %d, want 1", out.Injected["non_us"])
	}
}
