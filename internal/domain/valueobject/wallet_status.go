package valueobject

import "fmt"

// WalletStatus is the lifecycle state of a health-card wallet as reported by
// the health-card service.
type WalletStatus struct {
	value string
}

const (
	walletStatusPending   = "PENDING"
	walletStatusActive    = "ACTIVE"
	walletStatusSuspended = "SUSPENDED"
	walletStatusExpired   = "EXPIRED"
	walletStatusRejected  = "REJECTED"
)

var (
	WalletStatusPending   = WalletStatus{value: walletStatusPending}
	WalletStatusActive    = WalletStatus{value: walletStatusActive}
	WalletStatusSuspended = WalletStatus{value: walletStatusSuspended}
	WalletStatusExpired   = WalletStatus{value: walletStatusExpired}
	WalletStatusRejected  = WalletStatus{value: walletStatusRejected}
)

var validWalletStatuses = map[string]WalletStatus{
	walletStatusPending:   WalletStatusPending,
	walletStatusActive:    WalletStatusActive,
	walletStatusSuspended: WalletStatusSuspended,
	walletStatusExpired:   WalletStatusExpired,
	walletStatusRejected:  WalletStatusRejected,
}

// NewWalletStatus parses a WalletStatus. Lower-case input from upstream
// health-card events is accepted.
func NewWalletStatus(s string) (WalletStatus, error) {
	v, ok := validWalletStatuses[upper(s)]
	if !ok {
		return WalletStatus{}, fmt.Errorf("invalid wallet status: %q", s)
	}
	return v, nil
}

func (s WalletStatus) String() string { return s.value }

func (s WalletStatus) IsZero() bool { return s.value == "" }

func (s WalletStatus) IsActive() bool { return s == WalletStatusActive }
