package testutil

import (
	"time"

	"github.com/google/uuid"
)

// Fixed identifiers and clock values for deterministic tests.
var (
	BorrowerID      = uuid.MustParse("00000000-0000-0000-0000-000000000001")
	OtherBorrowerID = uuid.MustParse("00000000-0000-0000-0000-000000000002")
	AdminID         = uuid.MustParse("00000000-0000-0000-0000-000000000010")

	// ApprovalDate is a mid-month instant so calendar arithmetic stays obvious.
	ApprovalDate = time.Date(2026, time.January, 15, 9, 30, 0, 0, time.UTC)
)
