// Package kb provides the read-only place knowledge base for Pandito.
//
// The knowledge base is loaded once at startup from a JSON file mapping
// lowercase place keys to place records (lugares.json). After loading it is
// never mutated, so it can be shared across concurrent chat turns without
// locking. File order is preserved: matcher tie-breaks depend on it.
package kb

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON string

// Record is one knowledge-base entry describing a place in Mendoza.
//
// Key is the normalized lookup identifier (lowercase, trimmed). The optional
// fields are omitted from composed replies when empty.
type Record struct {
	Key         string   `json:"-"`
	Name        string   `json:"nombre"`
	Description string   `json:"descripcion"`
	HowToGet    string   `json:"como_llegar"`
	Hours       string   `json:"horarios"`
	Activities  []string `json:"actividades"`
}

// KnowledgeBase is an immutable, insertion-ordered collection of Records.
type KnowledgeBase struct {
	records []*Record
	byKey   map[string]*Record
}

// Empty returns a knowledge base with no entries. Every lookup misses; the
// intent classifier handles all input.
func Empty() *KnowledgeBase {
	return &KnowledgeBase{byKey: make(map[string]*Record)}
}

// Load reads and validates the knowledge-base file at path.
//
// A missing file is not an error: the bot degrades to an empty knowledge
// base rather than refusing to start. A present but malformed file is an
// error so the operator notices broken data instead of silently losing
// every place.
func Load(path string) (*KnowledgeBase, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("knowledge base file not found; place lookups disabled", "path", path)
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("kb: read %s: %w", path, err)
	}
	k, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("kb: %s: %w", path, err)
	}
	slog.Info("knowledge base loaded", "path", path, "places", k.Len())
	return k, nil
}

// Parse decodes and validates knowledge-base JSON.
//
// The document is validated against the embedded schema first, then decoded
// with a token reader so file order survives (encoding/json maps do not
// preserve key order, and the matcher's tie-break contract requires it).
func Parse(data []byte) (*KnowledgeBase, error) {
	if err := validate(data); err != nil {
		return nil, err
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if tok != json.Delim('{') {
		return nil, fmt.Errorf("parse: top-level value must be an object")
	}

	k := Empty()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("parse: %w", err)
		}
		rawKey, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("parse: unexpected token %v", tok)
		}

		rec := &Record{}
		if err := dec.Decode(rec); err != nil {
			return nil, fmt.Errorf("parse: entry %q: %w", rawKey, err)
		}

		key := strings.ToLower(strings.TrimSpace(rawKey))
		if key == "" {
			slog.Warn("kb: skipping entry with blank key")
			continue
		}
		rec.Key = key

		if prev, dup := k.byKey[key]; dup {
			// Later entries win, but the original position is kept so
			// insertion-order semantics stay stable.
			slog.Warn("kb: duplicate key, keeping last occurrence", "key", key)
			*prev = *rec
			continue
		}
		k.byKey[key] = rec
		k.records = append(k.records, rec)
	}

	// Consume the closing brace and make sure nothing trails it.
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("parse: trailing data after top-level object")
	}

	return k, nil
}

// validate checks data against the embedded JSON schema.
func validate(data []byte) error {
	schema, err := jsonschema.CompileString("lugares.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("validate: %w", err)
	}
	return nil
}

// Len returns the number of entries.
func (k *KnowledgeBase) Len() int {
	return len(k.records)
}

// Get returns the record for the normalized key.
func (k *KnowledgeBase) Get(key string) (*Record, bool) {
	rec, ok := k.byKey[strings.ToLower(strings.TrimSpace(key))]
	return rec, ok
}

// Records returns all records in file order. Callers must not mutate the
// returned records.
func (k *KnowledgeBase) Records() []*Record {
	return k.records
}

// Keys returns all keys in file order.
func (k *KnowledgeBase) Keys() []string {
	keys := make([]string, len(k.records))
	for i, rec := range k.records {
		keys[i] = rec.Key
	}
	return keys
}
