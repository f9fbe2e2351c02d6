// Package merge joins listing candidates with their detail fields and derives
// the short entity id carried in each locator.
package merge

import (
	"regexp"

	"catalogscraper/pkg/models"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// DeriveEntityID returns the maximal run of digits ending the locator.
// ok is false when the locator does not end in a digit.
func DeriveEntityID(locator string) (id string, ok bool) {
	m := trailingDigits.FindStringSubmatch(locator)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// Merge builds the persisted record for a candidate. Candidate fields win on
// key collision; colliding detail keys are returned in dropped.
func Merge(candidate models.CandidateRecord, detail models.DetailRecord) (record models.MergedRecord, dropped []string) {
	fields := make(models.DetailRecord, len(detail))
	for k, v := range detail {
		if models.IsCandidateKey(k) || k == models.EntityIDKey {
			dropped = append(dropped, k)
			continue
		}
		fields[k] = v
	}

	record = models.MergedRecord{
		CandidateRecord: candidate,
		Detail:          fields,
	}
	if id, ok := DeriveEntityID(candidate.URL); ok {
		record.EntityID = &id
	}
	return record, dropped
}
