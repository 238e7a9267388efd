package ident

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Guest is the user id recorded on orders and tickets created without a customer session.
const Guest ID = "guest"

// numberLiteral matches the JSON number grammar.
var numberLiteral = regexp.MustCompile(`^-?(0|[1-9][0-9]*)(\.[0-9]+)?([eE][+-]?[0-9]+)?$`)

// ID is the canonical identifier for every stored record.
//
// Saved collections mix numeric ids (products, categories, banners) with prefixed
// string ids (orders, users, tickets). Both decode into an ID, so comparisons are
// plain string equality no matter how the value reached us. Numeric ids are encoded
// back as JSON numbers to keep the stored shape unchanged.
type ID string

// Parse normalizes an identifier received from a form field, query string or path.
func Parse(s string) ID {
	return ID(strings.TrimSpace(s))
}

func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// IsNumeric reports whether the id is stored as a JSON number.
func (id ID) IsNumeric() bool { return numberLiteral.MatchString(string(id)) }

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("ident: %w", err)
		}
		*id = Parse(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("ident: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Generator hands out wall-clock millisecond identifiers. Values are strictly
// increasing within a process, so records created in the same millisecond still get
// distinct ids.
type Generator struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

// NewGenerator creates a generator reading time from now.
func NewGenerator(now func() time.Time) *Generator {
	if now == nil {
		now = time.Now
	}
	return &Generator{now: now}
}

// Default is the process-wide generator used when a service is not given one.
var Default = NewGenerator(time.Now)

// Next returns the next millisecond value.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ms := g.now().UnixMilli()
	if ms <= g.last {
		ms = g.last + 1
	}
	g.last = ms
	return ms
}

// New returns prefix followed by the next millisecond value, e.g. "BKS1700000000000".
func (g *Generator) New(prefix string) ID {
	return ID(prefix + strconv.FormatInt(g.Next(), 10))
}
