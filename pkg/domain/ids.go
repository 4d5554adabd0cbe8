// Package domain holds the identifier and money types shared across modules.
package domain

import "strconv"

// Principal is an opaque handle for whoever is calling. Authentication of the
// principal happens at the transport boundary; domain code only compares and
// records it.
type Principal string

func (p Principal) String() string { return string(p) }

// IsZero reports whether the principal is unset.
func (p Principal) IsZero() bool { return p == "" }

// LocationKey identifies a coverage location in the registry.
type LocationKey string

func (k LocationKey) String() string { return string(k) }

// PolicyID is a monotonically increasing policy identifier, starting at 1.
type PolicyID uint64

func (id PolicyID) String() string { return strconv.FormatUint(uint64(id), 10) }

// ClaimID is a monotonically increasing claim identifier, starting at 1.
type ClaimID uint64

func (id ClaimID) String() string { return strconv.FormatUint(uint64(id), 10) }
