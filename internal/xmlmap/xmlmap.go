// Package xmlmap converts PAN-OS XML API responses into generic maps.
package xmlmap

import (
	"fmt"

	"github.com/clbanning/mxj/v2"
)

// FromBytes converts an XML payload to a generic map. The conversion keeps
// every element and attribute, so round-tripping a response is lossless.
func FromBytes(data []byte) (mxj.Map, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty XML payload")
	}
	m, err := mxj.NewMapXml(data)
	if err != nil {
		return nil, fmt.Errorf("parsing XML: %w", err)
	}
	return m, nil
}

// Entries returns the element at path as a slice of maps. The PAN-OS API
// renders a single <entry> as an object and multiple entries as a list;
// both shapes come back as a slice here. A missing path yields nil.
func Entries(m mxj.Map, path string) []map[string]interface{} {
	vals, err := m.ValuesForPath(path)
	if err != nil || len(vals) == 0 {
		return nil
	}

	entries := make([]map[string]interface{}, 0, len(vals))
	for _, item := range vals {
		if e, ok := item.(map[string]interface{}); ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// HasValue reports whether path exists and holds a non-empty value.
// An empty element (e.g. <result/>) does not count.
func HasValue(m mxj.Map, path string) bool {
	v, err := m.ValueForPath(path)
	if err != nil || v == nil {
		return false
	}
	if s, ok := v.(string); ok && s == "" {
		return false
	}
	return true
}

// Str returns the string value of key in entry, or "" when absent
// or not a string.
func Str(entry map[string]interface{}, key string) string {
	if s, ok := entry[key].(string); ok {
		return s
	}
	return ""
}
