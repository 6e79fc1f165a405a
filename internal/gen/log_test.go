package gen

import (
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

func testLogParams(count int) LogParams {
	return LogParams{
		Count:       count,
		UserCount:   100,
		WindowStart: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		WindowDays:  180,
	}
}

func TestGenerateEvents_Count(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	assets := GenerateAssets(r, 50)
	events := GenerateEvents(r, assets, testLogParams(2000))

	if len(events) != 2000 {
		t.Fatalf("GenerateEvents() returned %d events, want 2000", len(events))
	}
}

func TestGenerateEvents_TimestampWindow(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	assets := GenerateAssets(r, 50)
	p := testLogParams(2000)
	events := GenerateEvents(r, assets, p)

	windowEnd := p.WindowStart.AddDate(0, 0, p.WindowDays)
	for i, e := range events {
		if e.Timestamp.Before(p.WindowStart) || !e.Timestamp.Before(windowEnd) {
			t.Errorf("event %d timestamp %v outside window [%v, %v)", i, e.Timestamp, p.WindowStart, windowEnd)
		}
		if e.Timestamp.Second() != 0 || e.Timestamp.Nanosecond() != 0 {
			t.Errorf("event %d timestamp %v has sub-minute precision", i, e.Timestamp)
		}
	}
}

func TestGenerateEvents_UserPool(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	assets := GenerateAssets(r, 50)
	events := GenerateEvents(r, assets, testLogParams(2000))

	pattern := regexp.MustCompile(`^USER_\d{3}$`)
	for i, e := range events {
		if !pattern.MatchString(e.UserID) {
			t.Fatalf("event %d user ID = %q, want pattern USER_NNN", i, e.UserID)
		}
	}
}

func TestGenerateEvents_ReferentialIntegrityAndEnrichment(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	assets := GenerateAssets(r, 50)
	byID := make(map[string]dataset.Asset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}

	events := GenerateEvents(r, assets, testLogParams(2000))
	for i, e := range events {
		a, ok := byID[e.AssetID]
		if !ok {
			t.Fatalf("event %d references unknown asset %q", i, e.AssetID)
		}
		if e.PHIFlag != a.PHIFlag || e.EncryptionStatus != a.EncryptionStatus {
			t.Errorf("event %d denormalized attributes (%v, %s) do not match asset (%v, %s)",
				i, e.PHIFlag, e.EncryptionStatus, a.PHIFlag, a.EncryptionStatus)
		}
	}
}

func TestGenerateEvents_ValidEnums(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	assets := GenerateAssets(r, 50)
	events := GenerateEvents(r, assets, testLogParams(2000))

	for i, e := range events {
		switch e.AccessType {
		case dataset.AccessRead, dataset.AccessWrite:
		default:
			t.Fatalf("event %d has invalid access type %q", i, e.AccessType)
		}
		switch e.IPRegion {
		case dataset.RegionUS, dataset.RegionEU, dataset.RegionAS:
		default:
			t.Fatalf("event %d has invalid IP region %q", i, e.IPRegion)
		}
		if e.PolicyViolation {
			t.Fatalf("event %d has violation label before labeling", i)
		}
	}
}
