package common

import (
	"github.com/google/uuid"
)

// NewRecordID generates a unique vector record ID with the "rec_" prefix
// Format: rec_<uuid>
func NewRecordID() string {
	return "rec_" + uuid.New().String()
}

// NewSourceID generates a unique source ID with the "src_" prefix
// Format: src_<uuid>
func NewSourceID() string {
	return "src_" + uuid.New().String()
}
