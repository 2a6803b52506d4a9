// Package xmlcodec converts entities and project configuration to and
// from the on-disk XML representation.
//
// The write path always emits the current schema generation. The read
// path additionally accepts the legacy generation (bare-string levels,
// single ParentID) by structural detection; there is no version tag in
// the files. Decode failures wrap types.ErrCorruptStore; the caller adds
// the offending file path.
package xmlcodec

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sealmit/asig/pkg/types"
)

// timeFormat is the timestamp layout used in XML files.
const timeFormat = time.RFC3339Nano

// marshal renders a document with the standard XML header and two-space
// indentation. Output is deterministic for equal input, which is what
// makes repeated saves of the same state byte-identical.
func marshal(doc any) ([]byte, error) {
	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

// corrupt wraps a decode failure in types.ErrCorruptStore.
func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", types.ErrCorruptStore, fmt.Sprintf(format, args...))
}

// parseBool accepts canonical Go booleans plus the capitalized form the
// legacy writer emitted.
func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

func formatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(timeFormat, s)
}

// attributeDoc carries one entry of the open-ended attribute map. Values
// are JSON-encoded since XML has no representation for arbitrary types.
type attributeDoc struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func encodeAttributes(attrs map[string]any) ([]attributeDoc, error) {
	if len(attrs) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	docs := make([]attributeDoc, 0, len(keys))
	for _, k := range keys {
		value, err := json.Marshal(attrs[k])
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		docs = append(docs, attributeDoc{Key: k, Value: string(value)})
	}
	return docs, nil
}

func decodeAttributes(docs []attributeDoc) (map[string]any, error) {
	if len(docs) == 0 {
		return nil, nil
	}
	attrs := make(map[string]any, len(docs))
	for _, d := range docs {
		var value any
		if err := json.Unmarshal([]byte(d.Value), &value); err != nil {
			return nil, corrupt("attribute %q: %v", d.Key, err)
		}
		attrs[d.Key] = value
	}
	return attrs, nil
}
