package service

import (
	"context"
	"fmt"
)

// UsageReport summarizes an owner's storage consumption.
type UsageReport struct {
	UsedBytes      int64   `json:"used_bytes"`
	CeilingBytes   int64   `json:"ceiling_bytes"`
	AvailableBytes int64   `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
}

// Quota answers how much space an owner occupies and whether an upload
// would push them past the ceiling. Usage is always computed fresh
// from the record store; there is no cached counter to drift.
type Quota struct {
	store        RecordStore
	ceiling      int64
	countTrashed bool
}

// NewQuota creates a quota accountant with a fixed per-owner ceiling.
// countTrashed controls whether trashed records count toward usage.
func NewQuota(store RecordStore, ceiling int64, countTrashed bool) *Quota {
	return &Quota{
		store:        store,
		ceiling:      ceiling,
		countTrashed: countTrashed,
	}
}

// Ceiling returns the configured per-owner byte ceiling.
func (q *Quota) Ceiling() int64 {
	return q.ceiling
}

// CountsTrashed reports whether trashed records count toward usage.
func (q *Quota) CountsTrashed() bool {
	return q.countTrashed
}

// CurrentUsage returns the owner's occupied bytes.
func (q *Quota) CurrentUsage(ctx context.Context, ownerID string) (int64, error) {
	return q.store.SumOwnerSize(ctx, ownerID, q.countTrashed)
}

// WouldExceed reports whether adding additionalBytes would push the
// owner past the ceiling. Zero additional bytes never exceeds, even
// for an owner already over the ceiling (say, after a policy change).
func (q *Quota) WouldExceed(ctx context.Context, ownerID string, additionalBytes int64) (bool, error) {
	if additionalBytes < 0 {
		return false, fmt.Errorf("%w: negative size %d", ErrInvalidArgument, additionalBytes)
	}
	if additionalBytes == 0 {
		return false, nil
	}

	used, err := q.CurrentUsage(ctx, ownerID)
	if err != nil {
		return false, err
	}
	return used+additionalBytes > q.ceiling, nil
}

// Report returns the owner's usage summary for the usage endpoint.
func (q *Quota) Report(ctx context.Context, ownerID string) (*UsageReport, error) {
	used, err := q.CurrentUsage(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	available := q.ceiling - used
	if available < 0 {
		available = 0
	}

	var percent float64
	if q.ceiling > 0 {
		percent = float64(used) / float64(q.ceiling) * 100
	}

	return &UsageReport{
		UsedBytes:      used,
		CeilingBytes:   q.ceiling,
		AvailableBytes: available,
		UsedPercent:    percent,
	}, nil
}
