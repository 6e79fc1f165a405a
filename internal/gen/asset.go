// Package gen implements the synthetic data pipeline: asset generation,
// access-log generation, anomaly injection, and violation labeling.
//
// All randomness flows through a single *rand.Rand seeded once per run, and
// every stage consumes draws in a fixed order, so two runs with the same seed
// and parameters produce identical tables.
package gen

import (
	"fmt"
	"math/rand"

	"github.com/veldtlabs/synthlog/internal/dataset"
)

// Sampling probabilities for asset attributes. These mirror the reference
// dataset and are deliberately not configurable.
const (
	probAssetPHI   = 0.3
	probAssetPlain = 0.4
)

// AssetIDPattern is the naming scheme for generated asset IDs.
const AssetIDPattern = "ASSET_%04d"

// GenerateAssets produces count assets with sequential zero-padded IDs and
// independently sampled PHI and encryption attributes. Per asset it consumes
// two draws from r: PHI flag first, then encryption status.
func GenerateAssets(r *rand.Rand, count int) []dataset.Asset {
	assets := make([]dataset.Asset, count)
	for i := range assets {
		a := dataset.Asset{
			ID:               fmt.Sprintf(AssetIDPattern, i+1),
			PHIFlag:          r.Float64() < probAssetPHI,
			EncryptionStatus: dataset.EncryptionEncrypted,
		}
		if r.Float64() < probAssetPlain {
			a.EncryptionStatus = dataset.EncryptionPlain
		}
		assets[i] = a
	}
	return assets
}
