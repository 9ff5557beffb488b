package ingest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/bedrockmgr/bsmctl/internal/logging"
	"github.com/bedrockmgr/bsmctl/internal/observe"
	"go.uber.org/zap"
)

// IngestionError reports that no candidate attribute key held a usable
// value. It is a normal, recoverable outcome (the card shows it inline),
// not an exception path.
type IngestionError struct {
	SourceID    string
	CheckedKeys []string
}

// Error implements the error interface
func (e *IngestionError) Error() string {
	return fmt.Sprintf("no usable attribute on %s (checked keys: %s)",
		e.SourceID, strings.Join(e.CheckedKeys, ", "))
}

// ListResult is a validated list of strings extracted from one attribute
type ListResult struct {
	// MatchedKey is the candidate key that supplied the data
	MatchedKey string
	Items      []string
}

// RecordListResult is a validated list of records extracted from one
// attribute. Malformed entries were filtered out, not fatal.
type RecordListResult struct {
	MatchedKey string
	Records    []map[string]any
	// Dropped counts entries filtered for missing the required field
	Dropped int
}

// MapResult is a validated string-to-string map extracted from one
// attribute. Primitive values (bool, number) are rendered to strings.
type MapResult struct {
	MatchedKey string
	Values     map[string]string
}

// sourceID is snapshot identity for error messages; tolerant of nil
func sourceID(snap *observe.Snapshot) string {
	if snap == nil {
		return "(no source)"
	}
	return snap.SourceID
}

// StringList extracts an array-of-strings attribute. The first candidate
// key whose value is a list of strings wins; lists containing non-string
// elements fail validation for that key and the search continues.
func StringList(snap *observe.Snapshot, candidateKeys []string) (*ListResult, error) {
	for _, key := range candidateKeys {
		value, ok := snap.Attr(key)
		if !ok {
			continue
		}
		items, ok := asStringSlice(value)
		if !ok {
			continue
		}
		return &ListResult{MatchedKey: key, Items: items}, nil
	}
	return nil, &IngestionError{SourceID: sourceID(snap), CheckedKeys: candidateKeys}
}

// RecordList extracts an array-of-records attribute. A candidate matches
// when its value is a list of objects; individual records missing
// requiredField are dropped with a warning rather than failing the list.
func RecordList(snap *observe.Snapshot, candidateKeys []string, requiredField string) (*RecordListResult, error) {
	for _, key := range candidateKeys {
		value, ok := snap.Attr(key)
		if !ok {
			continue
		}
		list, ok := value.([]any)
		if !ok {
			continue
		}

		records := make([]map[string]any, 0, len(list))
		dropped := 0
		valid := true
		for _, item := range list {
			record, ok := item.(map[string]any)
			if !ok {
				// A list of non-objects is the wrong shape entirely
				valid = false
				break
			}
			field, present := record[requiredField]
			if !present || field == nil || fmt.Sprintf("%v", field) == "" {
				dropped++
				logging.Warn("Dropping malformed record during ingestion",
					zap.String("source", sourceID(snap)),
					zap.String("key", key),
					zap.String("missing_field", requiredField),
				)
				continue
			}
			records = append(records, record)
		}
		if !valid {
			continue
		}
		return &RecordListResult{MatchedKey: key, Records: records, Dropped: dropped}, nil
	}
	return nil, &IngestionError{SourceID: sourceID(snap), CheckedKeys: candidateKeys}
}

// StringMap extracts an object-of-primitives attribute. Values may be
// strings, booleans, or numbers; anything else fails validation for that
// candidate key.
func StringMap(snap *observe.Snapshot, candidateKeys []string) (*MapResult, error) {
	for _, key := range candidateKeys {
		value, ok := snap.Attr(key)
		if !ok {
			continue
		}
		m, ok := value.(map[string]any)
		if !ok {
			continue
		}

		values := make(map[string]string, len(m))
		valid := true
		for k, v := range m {
			str, ok := primitiveToString(v)
			if !ok {
				valid = false
				break
			}
			values[k] = str
		}
		if !valid {
			continue
		}
		return &MapResult{MatchedKey: key, Values: values}, nil
	}
	return nil, &IngestionError{SourceID: sourceID(snap), CheckedKeys: candidateKeys}
}

// asStringSlice accepts []string directly or []any whose elements are all
// strings (the usual shape after JSON decoding).
func asStringSlice(value any) ([]string, bool) {
	switch v := value.(type) {
	case []string:
		return v, true
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			str, ok := item.(string)
			if !ok {
				return nil, false
			}
			items = append(items, str)
		}
		return items, true
	default:
		return nil, false
	}
}

// primitiveToString renders a primitive JSON value as a string.
// Floats drop trailing zeros so 10.0 renders as "10".
func primitiveToString(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case bool:
		return strconv.FormatBool(v), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	default:
		return "", false
	}
}
