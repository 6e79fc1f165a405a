// Package dataset defines the row models for the synthetic compliance
// fixture tables: asset metadata and access-log events.
package dataset

import (
	"time"
)

// EncryptionStatus describes how an asset is stored at rest.
type EncryptionStatus string

const (
	// EncryptionEncrypted marks an asset stored encrypted.
	EncryptionEncrypted EncryptionStatus = "Encrypted"
	// EncryptionPlain marks an asset stored in plain text.
	EncryptionPlain EncryptionStatus = "Plain"
)

// AccessType describes the kind of access recorded by an event.
type AccessType string

const (
	AccessRead  AccessType = "Read"
	AccessWrite AccessType = "Write"
)

// IPRegion is the coarse geographic origin of an access event.
type IPRegion string

const (
	RegionUS IPRegion = "US"
	RegionEU IPRegion = "EU"
	RegionAS IPRegion = "AS"
)

// Asset is one row of the metadata table. Assets are created once by the
// generator and never mutated or deleted afterward.
type Asset struct {
	ID               string
	PHIFlag          bool
	EncryptionStatus EncryptionStatus
}

// AccessEvent is one row of the access-log table. Its identity is its
// position in the table; anomaly injection overwrites fields in place but
// never adds or removes rows.
//
// PHIFlag and EncryptionStatus are point-in-time copies of the referenced
// asset's attributes taken at generation (or injection) time, not live
// references. The denormalization is intentional: a downstream consumer
// reads each row as a self-contained record.
type AccessEvent struct {
	Timestamp        time.Time
	UserID           string
	AssetID          string
	AccessType       AccessType
	IPRegion         IPRegion
	PHIFlag          bool
	EncryptionStatus EncryptionStatus

	// PolicyViolation is derived by the labeler from the row's final field
	// values. It is recomputed whole-table, never updated incrementally.
	PolicyViolation bool
}
