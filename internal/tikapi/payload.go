package tikapi

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// decodeEntries parses body and returns the elements of its top-level "data"
// array. A missing or non-array "data" yields no entries. Numbers are kept as
// json.Number so ids keep their literal form.
func decodeEntries(body []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, &ParseError{Err: err}
	}
	if dec.More() {
		return nil, &ParseError{Err: errors.New("trailing data after document")}
	}

	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("top level is %s, want object", kindOf(doc))}
	}

	entries, _ := obj["data"].([]any)
	return entries, nil
}

// lookup walks nested objects along path. It reports false as soon as a key
// is absent, null, or a step is not an object.
func lookup(v any, path ...string) (any, bool) {
	cur := v
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		next, ok := obj[key]
		if !ok || next == nil {
			return nil, false
		}
		cur = next
	}
	return cur, true
}

// searchOwner reads entry → live_info → owner from a search result entry.
func searchOwner(entry any) (any, bool) {
	return lookup(entry, "live_info", "owner")
}

// recommendedOwner reads entry → owner from a recommendation result entry.
func recommendedOwner(entry any) (any, bool) {
	return lookup(entry, "owner")
}

// displayID reads owner → display_id. Empty strings and zero count as absent.
func displayID(owner any) (string, bool) {
	v, ok := lookup(owner, "display_id")
	if !ok {
		return "", false
	}
	return scalarString(v)
}

// scalarString renders strings and numbers; anything else is absent.
func scalarString(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, s != ""
	case json.Number:
		return s.String(), s.String() != "0"
	default:
		return "", false
	}
}

// ExtractSearchDisplayIDs returns the owner display ids of a search response,
// in entry order.
func ExtractSearchDisplayIDs(body []byte) ([]string, error) {
	entries, err := decodeEntries(body)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		owner, ok := searchOwner(entry)
		if !ok {
			continue
		}
		if id, ok := displayID(owner); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ExtractRecommendedDisplayIDs returns the owner display ids of a
// recommendation response, in entry order.
func ExtractRecommendedDisplayIDs(body []byte) ([]string, error) {
	entries, err := decodeEntries(body)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	for _, entry := range entries {
		owner, ok := recommendedOwner(entry)
		if !ok {
			continue
		}
		if id, ok := displayID(owner); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ExtractRoomIDs flattens live_info → owner → own_room → room_ids of every
// search entry into one sequence. Duplicates are kept.
func ExtractRoomIDs(body []byte) ([]string, error) {
	entries, err := decodeEntries(body)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		owner, ok := searchOwner(entry)
		if !ok {
			continue
		}
		raw, ok := lookup(owner, "own_room", "room_ids")
		if !ok {
			continue
		}
		list, ok := raw.([]any)
		if !ok {
			continue
		}
		for _, item := range list {
			switch v := item.(type) {
			case string:
				ids = append(ids, v)
			case json.Number:
				ids = append(ids, v.String())
			}
		}
	}
	return ids, nil
}

func kindOf(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case json.Number:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}
