package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ricare/lending/internal/domain/port"
)

// StubIdentityVerifier implements port.IdentityVerifier for environments
// without the identity service. Every patient is KYC-verified unless listed
// as unverified; UHIDs are derived from the patient ID.
type StubIdentityVerifier struct {
	unverified map[uuid.UUID]bool
}

// NewStubIdentityVerifier creates a verifier; unverified patients fail KYC.
func NewStubIdentityVerifier(unverified ...uuid.UUID) *StubIdentityVerifier {
	v := &StubIdentityVerifier{unverified: make(map[uuid.UUID]bool, len(unverified))}
	for _, id := range unverified {
		v.unverified[id] = true
	}
	return v
}

// GetIdentity implements port.IdentityVerifier.
func (v *StubIdentityVerifier) GetIdentity(_ context.Context, ownerID uuid.UUID) (port.Identity, error) {
	if ownerID == uuid.Nil {
		return port.Identity{}, fmt.Errorf("owner ID is required")
	}
	return port.Identity{
		UHID:        "UHID-" + strings.ToUpper(ownerID.String()[:8]),
		KYCVerified: !v.unverified[ownerID],
	}, nil
}
