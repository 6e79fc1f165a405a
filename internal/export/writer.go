// Package export serializes the generated tables to flat CSV files and
// writes the run manifest.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

// Output file names inside the output directory.
const (
	MetadataFileName   = "metadata.csv"
	AccessLogsFileName = "access_logs.csv"
	ManifestFileName   = "manifest.json"
)

// TimestampLayout is the on-disk timestamp format for access-log rows.
const TimestampLayout = "2006-01-02 15:04:05"

// Column headers, in output order.
var (
	MetadataHeader   = []string{"Data_Asset_ID", "PHI_Flag", "Encryption_Status"}
	AccessLogsHeader = []string{
		"Timestamp",
		"User_ID",
		"Data_Asset_ID",
		"Access_Type",
		"IP_Location",
		"PHI_Flag",
		"Encryption_Status",
		"Policy_Violation",
	}
)

// Writer serializes tables into a single output directory. There is no
// transactional guarantee across files: a failed write leaves whichever
// files already succeeded on disk.
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir, creating the directory if it
// does not exist.
func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}
	return &Writer{dir: dir}, nil
}

// Dir returns the output directory.
func (w *Writer) Dir() string {
	return w.dir
}

// WriteAssets serializes the asset metadata table. Returns the file path
// and its size in bytes.
func (w *Writer) WriteAssets(assets []dataset.Asset) (string, int64, error) {
	buf := new(bytes.Buffer)
	cw := csv.NewWriter(buf)

	if err := cw.Write(MetadataHeader); err != nil {
		return "", 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, a := range assets {
		row := []string{
			a.ID,
			formatBool(a.PHIFlag),
			string(a.EncryptionStatus),
		}
		if err := cw.Write(row); err != nil {
			return "", 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", 0, fmt.Errorf("CSV writer error: %w", err)
	}

	return w.writeFile(MetadataFileName, buf.Bytes())
}

// WriteEvents serializes the access-log table. Returns the file path and
// its size in bytes.
func (w *Writer) WriteEvents(events []dataset.AccessEvent) (string, int64, error) {
	buf := new(bytes.Buffer)
	cw := csv.NewWriter(buf)

	if err := cw.Write(AccessLogsHeader); err != nil {
		return "", 0, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range events {
		e := &events[i]
		violation := "0"
		if e.PolicyViolation {
			violation = "1"
		}
		row := []string{
			e.Timestamp.Format(TimestampLayout),
			e.UserID,
			e.AssetID,
			string(e.AccessType),
			string(e.IPRegion),
			formatBool(e.PHIFlag),
			string(e.EncryptionStatus),
			violation,
		}
		if err := cw.Write(row); err != nil {
			return "", 0, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return "", 0, fmt.Errorf("CSV writer error: %w", err)
	}

	return w.writeFile(AccessLogsFileName, buf.Bytes())
}

// FileStat describes one written output file in the manifest.
type FileStat struct {
	Path      string `json:"path"`
	Rows      int    `json:"rows"`
	SizeBytes int64  `json:"size_bytes"`
}

// Manifest records the parameters and outcomes of a generation run so a
// downstream consumer can verify what it was handed.
type Manifest struct {
	RunID         string              `json:"run_id"`
	GeneratedAt   time.Time           `json:"generated_at"`
	Seed          int64               `json:"seed"`
	AssetCount    int                 `json:"asset_count"`
	EventCount    int                 `json:"event_count"`
	AnomalyCount  int                 `json:"anomaly_count"`
	PHIAssets     int                 `json:"phi_assets"`
	PlainAssets   int                 `json:"plain_assets"`
	Violations    int                 `json:"violations"`
	ViolationRate float64             `json:"violation_rate"`
	Injected      map[string]int      `json:"injected"`
	Files         map[string]FileStat `json:"files"`
}

// WriteManifest serializes the manifest as indented JSON. Returns the file
// path and its size in bytes.
func (w *Writer) WriteManifest(m Manifest) (string, int64, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", 0, fmt.Errorf("failed to marshal manifest: %w", err)
	}
	return w.writeFile(ManifestFileName, append(data, '\n'))
}

// writeFile persists data under the output directory and reports its size.
func (w *Writer) writeFile(name string, data []byte) (string, int64, error) {
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, int64(len(data)), nil
}

// formatBool renders booleans as "True"/"False". Downstream consumers of the
// fixtures expect the capitalized literals, not strconv.FormatBool's lowercase.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
