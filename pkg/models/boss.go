package models

import "time"

// Boss represents an authenticated account playing one crime-boss save.
type Boss struct {
	// From JWT claims
	ID          string `json:"id"`          // Converted from int64 user_id
	Username    string `json:"username"`    // JWT claim
	Email       string `json:"email"`       // JWT claim
	Permissions int64  `json:"permissions"` // JWT claim: bitwise permission flags
	Activated   int64  `json:"activated"`   // JWT claim: activation timestamp or ban status

	// Connection state
	Connected   bool      `json:"connected"`
	ConnectedAt time.Time `json:"connected_at"`
	LastSeen    time.Time `json:"last_seen"`

	// SaveID keys the snapshot store. Defaults to the account ID.
	SaveID string `json:"save_id,omitempty"`
}

// PermGameMaster allows delivering items and containers directly into a save.
const PermGameMaster int64 = 1 << 0

// HasPermission reports whether every bit of perm is set.
func (b *Boss) HasPermission(perm int64) bool {
	return b.Permissions&perm == perm
}

// IsActive checks if the account is activated and not banned
func (b *Boss) IsActive() bool {
	// activated > 0 means activated
	// activated == 0 means not activated
	// activated == -1 means banned
	return b.Activated > 0
}

// IsBanned checks if the account is banned
func (b *Boss) IsBanned() bool {
	return b.Activated == -1
}

// SaveKey returns the key used for persistence.
func (b *Boss) SaveKey() string {
	if b.SaveID != "" {
		return b.SaveID
	}
	return b.ID
}
