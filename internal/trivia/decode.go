package trivia

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func decodeScalar(raw json.RawMessage) (any, bool) {
	if isNull(raw) {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, false
	}
	switch v.(type) {
	case string, json.Number, bool:
		return v, true
	}
	return nil, false
}

// textValue renders a JSON scalar as the text stored in a string column.
// Null, objects and arrays have no text form.
func textValue(raw json.RawMessage) (string, bool) {
	v, ok := decodeScalar(raw)
	if !ok {
		return "", false
	}
	switch v := v.(type) {
	case string:
		return v, true
	case json.Number:
		return v.String(), true
	case bool:
		return strconv.FormatBool(v), true
	}
	return "", false
}

// intValue accepts integral JSON numbers and strings holding an integer
func intValue(raw json.RawMessage) (int, bool) {
	v, ok := decodeScalar(raw)
	if !ok {
		return 0, false
	}
	switch v := v.(type) {
	case json.Number:
		return numberToInt(v)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func numberToInt(n json.Number) (int, bool) {
	if i, err := n.Int64(); err == nil {
		if i < math.MinInt32 || i > math.MaxInt32 {
			return 0, false
		}
		return int(i), true
	}
	f, err := n.Float64()
	if err != nil || f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

// idList decodes a JSON array of question ids
func idList(raw json.RawMessage) ([]uint, bool) {
	if isNull(raw) {
		return nil, false
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, false
	}
	ids := make([]uint, 0, len(items))
	for _, item := range items {
		v, ok := decodeScalar(item)
		if !ok {
			return nil, false
		}
		n, isNumber := v.(json.Number)
		if !isNumber {
			return nil, false
		}
		id, ok := numberToInt(n)
		if !ok {
			return nil, false
		}
		if id < 1 {
			// no question carries a non-positive id
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, true
}

// escapeLike makes LIKE wildcards in term match literally
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}
