// Package diff computes a three-way partition of two keyed collections.
// It is a pure comparison used by the read-only verification workflow and
// never mutates its inputs.
package diff

import "reflect"

// Record is a generic keyed record: field name to value.
type Record = map[string]any

// Pair holds a matched record from each list.
type Pair struct {
	Left  Record
	Right Record
}

// Result is the three-way partition produced by Lists.
type Result struct {
	// MatchedDiffs holds pairs that matched on a key field but are not
	// field-for-field identical.
	MatchedDiffs []Pair
	// InList1Only holds records from list1 with no match in list2.
	InList1Only []Record
	// InList2Only holds records from list2 with no match in list1.
	InList2Only []Record
}

// InSync reports whether the two lists were identical.
func (r Result) InSync() bool {
	return len(r.MatchedDiffs) == 0 && len(r.InList1Only) == 0 && len(r.InList2Only) == 0
}

// Lists compares two collections of keyed records. Key fields are tried in
// priority order: a lookup is built from every key-field value present in
// the other list, and the first key field present on a record that yields a
// hit determines its pairing.
func Lists(list1, list2 []Record, keyFields ...string) Result {
	lookup1 := buildLookup(list1, keyFields)
	lookup2 := buildLookup(list2, keyFields)

	var result Result

	for _, item := range list1 {
		match, ok := probe(item, lookup2, keyFields)
		if !ok {
			result.InList1Only = append(result.InList1Only, item)
			continue
		}
		if !reflect.DeepEqual(item, match) {
			result.MatchedDiffs = append(result.MatchedDiffs, Pair{Left: item, Right: match})
		}
	}

	// Matched records are already represented by the first pass; only
	// unmatched list2 records are emitted here.
	for _, item := range list2 {
		if _, ok := probe(item, lookup1, keyFields); !ok {
			result.InList2Only = append(result.InList2Only, item)
		}
	}

	return result
}

// buildLookup indexes every present, non-nil key-field value of each record.
// Earlier records win on key collisions so the probe order stays stable.
func buildLookup(list []Record, keyFields []string) map[any]Record {
	lookup := make(map[any]Record, len(list))
	for _, item := range list {
		for _, key := range keyFields {
			v, ok := item[key]
			if !ok || v == nil {
				continue
			}
			if _, taken := lookup[v]; !taken {
				lookup[v] = item
			}
		}
	}
	return lookup
}

// probe tries each key field in order and returns the first hit.
func probe(item Record, lookup map[any]Record, keyFields []string) (Record, bool) {
	for _, key := range keyFields {
		v, ok := item[key]
		if !ok || v == nil {
			continue
		}
		if match, hit := lookup[v]; hit {
			return match, true
		}
	}
	return nil, false
}
