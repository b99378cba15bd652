package analysis

import "github.com/wrenn/capitolwatch/internal/contracts"

// mergeReturn combines a freshly computed return record with the stored
// one. The 30-day fields are kept once resolved: a later run where the
// price window has gaps must never regress a resolved 30-day return to
// nil. The current-return fields always take the new values, and entry
// fields are recomputed from the same series so they follow the new
// record too.
func mergeReturn(existing, incoming *contracts.TradeReturn) *contracts.TradeReturn {
	if existing == nil {
		return incoming
	}

	merged := *incoming
	if merged.Return30D == nil && existing.Return30D != nil {
		merged.Return30D = existing.Return30D
		merged.Return30DDate = existing.Return30DDate
	}
	return &merged
}
