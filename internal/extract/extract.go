package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// SeriesType is the discriminator carried by show records in station markup.
const SeriesType = "RadioSeries"

// Record is one structured-data record lifted out of a page: a
// discriminator type, an optional id string, and the raw property mapping.
// Downstream code reads it through the typed accessors only.
type Record struct {
	Type       string
	ID         string
	Properties map[string]any
}

// String returns a string-valued property, empty when absent or not a string.
func (r Record) String(key string) string {
	value, _ := r.Properties[key].(string)
	return strings.TrimSpace(value)
}

// Nested returns a single embedded sub-record (e.g. the author block).
func (r Record) Nested(key string) (Record, bool) {
	switch value := r.Properties[key].(type) {
	case map[string]any:
		return recordFromObject(value), true
	case []any:
		for _, entry := range value {
			if object, ok := entry.(map[string]any); ok {
				return recordFromObject(object), true
			}
		}
	}
	return Record{}, false
}

// NestedList returns every embedded sub-record under key. A bare object
// counts as a one-element list.
func (r Record) NestedList(key string) []Record {
	switch value := r.Properties[key].(type) {
	case map[string]any:
		return []Record{recordFromObject(value)}
	case []any:
		records := make([]Record, 0, len(value))
		for _, entry := range value {
			if object, ok := entry.(map[string]any); ok {
				records = append(records, recordFromObject(object))
			}
		}
		return records
	default:
		return nil
	}
}

// Metadata returns the record's leftover scalar properties: every
// string-valued property not named in consumed and not part of the
// JSON-LD envelope. Nil when nothing is left.
func (r Record) Metadata(consumed ...string) map[string]string {
	skip := map[string]struct{}{"@type": {}, "@id": {}, "@context": {}}
	for _, key := range consumed {
		skip[key] = struct{}{}
	}
	var metadata map[string]string
	for key, value := range r.Properties {
		if _, ok := skip[key]; ok {
			continue
		}
		text, ok := value.(string)
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		if metadata == nil {
			metadata = make(map[string]string)
		}
		metadata[key] = strings.TrimSpace(text)
	}
	return metadata
}

// StringList returns a property that may be a string or list of strings.
func (r Record) StringList(key string) []string {
	switch value := r.Properties[key].(type) {
	case string:
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	case []any:
		values := make([]string, 0, len(value))
		for _, entry := range value {
			if s, ok := entry.(string); ok && strings.TrimSpace(s) != "" {
				values = append(values, strings.TrimSpace(s))
			}
		}
		return values
	default:
		return nil
	}
}

// Extract parses page bytes and returns every JSON-LD record found in
// script blocks, in document order. Malformed blocks are skipped; an
// unparsable document is not an error, it simply yields no records.
func Extract(body []byte, baseURL string) ([]Record, error) {
	blocks, err := ldJSONBlocks(body)
	if err != nil {
		return nil, fmt.Errorf("extract: tokenize page: %w", err)
	}

	var records []Record
	for _, block := range blocks {
		var decoded any
		if err := json.Unmarshal(block, &decoded); err != nil {
			continue
		}
		records = append(records, flatten(decoded)...)
	}
	_ = baseURL // reserved for relative-id resolution; station ids are absolute
	return records, nil
}

// FindSeries returns the zero-or-one series record from an extraction
// result, identified by the RadioSeries discriminator.
func FindSeries(records []Record) (Record, bool) {
	for _, record := range records {
		if record.Type == SeriesType {
			return record, true
		}
	}
	return Record{}, false
}

func ldJSONBlocks(body []byte) ([][]byte, error) {
	tokenizer := html.NewTokenizer(bytes.NewReader(body))
	var blocks [][]byte
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// io.EOF at document end; anything else means a truncated
			// page, which still yields the blocks seen so far.
			if err := tokenizer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return blocks, nil
			}
			return blocks, nil
		case html.StartTagToken:
			name, hasAttr := tokenizer.TagName()
			if string(name) != "script" || !hasAttr {
				continue
			}
			if !isLDJSONScript(tokenizer) {
				continue
			}
			if tokenizer.Next() == html.TextToken {
				text := tokenizer.Text()
				block := make([]byte, len(text))
				copy(block, text)
				blocks = append(blocks, block)
			}
		}
	}
}

func isLDJSONScript(tokenizer *html.Tokenizer) bool {
	for {
		key, value, more := tokenizer.TagAttr()
		if string(key) == "type" && strings.EqualFold(strings.TrimSpace(string(value)), "application/ld+json") {
			return true
		}
		if !more {
			return false
		}
	}
}

// flatten unwraps top-level arrays and @graph containers into a flat
// record list.
func flatten(decoded any) []Record {
	switch value := decoded.(type) {
	case []any:
		var records []Record
		for _, entry := range value {
			records = append(records, flatten(entry)...)
		}
		return records
	case map[string]any:
		if graph, ok := value["@graph"].([]any); ok {
			var records []Record
			for _, entry := range graph {
				records = append(records, flatten(entry)...)
			}
			return records
		}
		return []Record{recordFromObject(value)}
	default:
		return nil
	}
}

func recordFromObject(object map[string]any) Record {
	record := Record{Properties: object}
	switch typed := object["@type"].(type) {
	case string:
		record.Type = typed
	case []any:
		for _, entry := range typed {
			if s, ok := entry.(string); ok {
				record.Type = s
				break
			}
		}
	}
	if id, ok := object["@id"].(string); ok {
		record.ID = strings.TrimSpace(id)
	}
	return record
}
