package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IDList is the normalized form of RTU references. The backend sends a
// single id (string or number), a list, or a nested list; all collapse here.
type IDList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *IDList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := flattenIDs(raw, nil)
	if err != nil {
		return err
	}
	*l = out
	return nil
}

func flattenIDs(value any, acc IDList) (IDList, error) {
	switch v := value.(type) {
	case nil:
		return acc, nil
	case string:
		v = strings.TrimSpace(v)
		if v != "" {
			acc = append(acc, v)
		}
		return acc, nil
	case json.Number:
		return append(acc, v.String()), nil
	case []any:
		for _, item := range v {
			var err error
			acc, err = flattenIDs(item, acc)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	default:
		return nil, fmt.Errorf("rules: unsupported rtu id %T", value)
	}
}

// Numeric converts the ids for write requests.
func (l IDList) Numeric() ([]int64, error) {
	out := make([]int64, 0, len(l))
	for _, id := range l {
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRTU, id)
		}
		out = append(out, n)
	}
	return out, nil
}

// Merge appends ids not already present, keeping order.
func (l IDList) Merge(other IDList) IDList {
	seen := make(map[string]struct{}, len(l)+len(other))
	out := make(IDList, 0, len(l)+len(other))
	for _, id := range append(append(IDList(nil), l...), other...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// TagList accepts a JSON array or a comma separated string.
type TagList []string

// UnmarshalJSON implements json.Unmarshaler.
func (t *TagList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = TagList{}
		return nil
	}
	if data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		*t = SplitTags(raw)
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		// Unknown shape degrades to no tags.
		*t = TagList{}
		return nil
	}
	*t = list
	return nil
}

// SplitTags splits a CSV tag string, trimming blanks.
func SplitTags(raw string) TagList {
	out := TagList{}
	if raw == "" {
		return out
	}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// FlexString accepts JSON strings and numbers.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
