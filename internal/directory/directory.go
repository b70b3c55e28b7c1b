// Package directory maps ticker symbols to human-readable display names.
package directory

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Unknown is returned for symbols missing from the directory.
const Unknown = "Unknown"

// Directory is a read-only symbol to name mapping. It is safe for concurrent use.
type Directory struct {
	names   map[string]string
	symbols []string
}

// New builds a Directory from a symbol to name map.
func New(names map[string]string) *Directory {
	d := &Directory{names: make(map[string]string, len(names))}
	for k, v := range names {
		d.names[k] = v
		d.symbols = append(d.symbols, k)
	}
	sort.Strings(d.symbols)
	return d
}

// Load reads a flat JSON object of {symbol: name}.
func Load(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open ticker directory: %w", err)
	}
	defer f.Close()

	var names map[string]string
	if err := json.NewDecoder(f).Decode(&names); err != nil {
		return nil, fmt.Errorf("parse ticker directory %s: %w", path, err)
	}
	return New(names), nil
}

// Name returns the display name of symbol, or Unknown.
func (d *Directory) Name(symbol string) string {
	if d == nil {
		return Unknown
	}
	if n, ok := d.names[symbol]; ok {
		return n
	}
	return Unknown
}

// Label formats a picker label like "AAPL (Apple Inc.)".
func (d *Directory) Label(symbol string) string {
	return fmt.Sprintf("%s (%s)", symbol, d.Name(symbol))
}

// Symbols returns all known symbols in sorted order.
func (d *Directory) Symbols() []string {
	if d == nil {
		return nil
	}
	return append([]string(nil), d.symbols...)
}

// Len returns the number of entries.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.names)
}
