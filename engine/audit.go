package engine

import (
	"cartsync"
	"cartsync/match"
)

// DefaultAuditThreshold requires full token coverage of the expected name
// within the observed cart entry's display name.
const DefaultAuditThreshold = 1.0

// AuditReport classifies post-sync cart state against intent. Every desired
// item lands in exactly one of Fulfilled or Missing; every cart entry in
// exactly one of Matched or Unexpected.
type AuditReport struct {
	Fulfilled  []ResolvedItem       `json:"fulfilled"`
	Missing    []ResolvedItem       `json:"missing"`
	Matched    []cartsync.CartEntry `json:"matched"`
	Unexpected []cartsync.CartEntry `json:"unexpected"`
}

// Audit cross-checks the desired set against a fresh cart snapshot by
// name coverage, not product ID equality: the cart UI does not always
// expose the identifier used at search time, so token coverage of the
// expected name is the only robust signal available.
//
// A cart entry that covers no desired item at all is Unexpected: present
// in the cart but never requested this run.
func Audit(desired []ResolvedItem, snapshot cartsync.CartSnapshot, threshold float64) AuditReport {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultAuditThreshold
	}

	report := AuditReport{}
	entryMatched := make([]bool, len(snapshot))

	for _, d := range desired {
		covered := false
		for i, entry := range snapshot {
			if auditCovers(entry, d.Product, threshold) {
				covered = true
				entryMatched[i] = true
			}
		}
		if covered {
			report.Fulfilled = append(report.Fulfilled, d)
		} else {
			report.Missing = append(report.Missing, d)
		}
	}

	for i, entry := range snapshot {
		if entryMatched[i] {
			report.Matched = append(report.Matched, entry)
		} else {
			report.Unexpected = append(report.Unexpected, entry)
		}
	}
	return report
}

func auditCovers(entry cartsync.CartEntry, product cartsync.ProductIdentity, threshold float64) bool {
	name := entry.DisplayName
	if name == "" {
		name = entry.Product.Name
	}
	return match.Coverage(product.Name, name) >= threshold
}
