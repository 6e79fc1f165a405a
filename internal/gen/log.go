package gen

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

// Sampling probabilities for access-log attributes.
const (
	probAccessRead = 0.7
)

// regionWeights is the sampling distribution over IP regions, in the order
// US, EU, AS.
var regionWeights = []float64{0.6, 0.25, 0.15}

var regionByIndex = []dataset.IPRegion{dataset.RegionUS, dataset.RegionEU, dataset.RegionAS}

// UserIDPattern is the naming scheme for generated user IDs.
const UserIDPattern = "USER_%03d"

// LogParams configures access-log generation.
type LogParams struct {
	// Count is the number of events to generate.
	Count int
	// UserCount is the size of the user pool (USER_001..USER_NNN).
	UserCount int
	// WindowStart is the inclusive start of the timestamp window.
	WindowStart time.Time
	// WindowDays is the span of the window; day offsets are drawn from
	// [0, WindowDays).
	WindowDays int
}

// GenerateEvents produces p.Count access-log events referencing the given
// assets. Timestamps are uniform over the window at minute resolution, the
// asset is sampled with replacement, and each event carries a denormalized
// copy of its asset's PHI flag and encryption status taken at generation
// time.
//
// Per event the draw order is: day offset, hour, minute, user, asset,
// access type, IP region.
func GenerateEvents(r *rand.Rand, assets []dataset.Asset, p LogParams) []dataset.AccessEvent {
	events := make([]dataset.AccessEvent, p.Count)
	for i := range events {
		day := r.Intn(p.WindowDays)
		hour := r.Intn(24)
		minute := r.Intn(60)
		ts := p.WindowStart.AddDate(0, 0, day).
			Add(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)

		user := fmt.Sprintf(UserIDPattern, r.Intn(p.UserCount)+1)
		asset := assets[r.Intn(len(assets))]

		accessType := dataset.AccessWrite
		if r.Float64() < probAccessRead {
			accessType = dataset.AccessRead
		}
		region := regionByIndex[weightedIndex(r, regionWeights)]

		events[i] = dataset.AccessEvent{
			Timestamp:        ts,
			UserID:           user,
			AssetID:          asset.ID,
			AccessType:       accessType,
			IPRegion:         region,
			PHIFlag:          asset.PHIFlag,
			EncryptionStatus: asset.EncryptionStatus,
		}
	}
	return events
}
