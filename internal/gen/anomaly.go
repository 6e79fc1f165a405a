package gen

import (
	"math/rand"
	"time"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

// Anomaly type names, used for injection stats and metric labels.
const (
	AnomalyPlainPHI = "plain_phi"
	AnomalyOffHours = "off_hours"
	AnomalyNonUS    = "non_us"
)

// anomalyWeights is the sampling distribution over anomaly types, in the
// order plain_phi, off_hours, non_us.
var anomalyWeights = []float64{0.4, 0.3, 0.3}

// offHourChoices are the hours an off-hours injection draws from: 9 PM
// through 4 AM.
var offHourChoices = []int{21, 22, 23, 0, 1, 2, 3, 4}

// nonUSRegions are the replacement regions for a non_us injection.
var nonUSRegions = []dataset.IPRegion{dataset.RegionEU, dataset.RegionAS}

// InjectStats reports what an injection pass did.
type InjectStats struct {
	// PlainPHI, OffHours and NonUS count rows mutated by each anomaly type.
	PlainPHI int
	OffHours int
	NonUS    int
	// Skipped counts plain_phi selections that were left unmodified because
	// the asset table contains no plaintext-PHI asset.
	Skipped int
}

// Total returns the number of rows actually mutated.
func (s InjectStats) Total() int {
	return s.PlainPHI + s.OffHours + s.NonUS
}

// Selected returns the number of rows chosen for injection, including
// plain_phi no-ops.
func (s InjectStats) Selected() int {
	return s.Total() + s.Skipped
}

// InjectAnomalies selects k distinct event rows uniformly at random (the
// first k positions of a random permutation) and mutates each in place with
// exactly one weighted-drawn anomaly type:
//
//   - plain_phi: repoints the row at a random plaintext-PHI asset and syncs
//     the denormalized flags. If no such asset exists the row is left
//     unchanged; this is a defined no-op, not an error.
//   - off_hours: moves the timestamp hour into {21..23, 0..4} and redraws
//     the minute, preserving the date.
//   - non_us: replaces the IP region with EU or AS.
//
// No row receives more than one anomaly. Row count and referential
// integrity are preserved: plain_phi only swaps to asset IDs present in the
// table.
func InjectAnomalies(r *rand.Rand, events []dataset.AccessEvent, assets []dataset.Asset, k int) InjectStats {
	var plainPHI []dataset.Asset
	for _, a := range assets {
		if a.PHIFlag && a.EncryptionStatus == dataset.EncryptionPlain {
			plainPHI = append(plainPHI, a)
		}
	}

	targets := r.Perm(len(events))[:k]

	var stats InjectStats
	for _, idx := range targets {
		row := &events[idx]
		switch weightedIndex(r, anomalyWeights) {
		case 0:
			if len(plainPHI) == 0 {
				stats.Skipped++
				continue
			}
			stats.PlainPHI++
			asset := plainPHI[r.Intn(len(plainPHI))]
			row.AssetID = asset.ID
			row.PHIFlag = true
			row.EncryptionStatus = dataset.EncryptionPlain
		case 1:
			stats.OffHours++
			hour := offHourChoices[r.Intn(len(offHourChoices))]
			minute := r.Intn(60)
			t := row.Timestamp
			row.Timestamp = time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
		case 2:
			stats.NonUS++
			row.IPRegion = nonUSRegions[r.Intn(len(nonUSRegions))]
		}
	}
	return stats
}
