// Package replies holds the canned chat greetings and keyword replies.
package replies

import (
	_ "embed"
	"fmt"
	"math/rand/v2"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed replies.yaml
var defaultTable []byte

// Keyword is one entry of the ordered reply table
type Keyword struct {
	Key   string `yaml:"key"`
	Reply string `yaml:"reply"`
}

// Table is the set of canned replies
type Table struct {
	Greetings []string  `yaml:"greetings"`
	Keywords  []Keyword `yaml:"keywords"`
}

// Default returns the table compiled into the binary
func Default() (*Table, error) {
	return Parse(defaultTable)
}

// Parse decodes a reply table from YAML
func Parse(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse reply table: %w", err)
	}
	if len(t.Greetings) == 0 {
		return nil, fmt.Errorf("reply table has no greetings")
	}
	for i, k := range t.Keywords {
		if k.Key == "" || k.Reply == "" {
			return nil, fmt.Errorf("reply table entry %d is incomplete", i)
		}
	}
	return &t, nil
}

// Match returns the reply of the first key contained in input
func (t *Table) Match(input string) (string, bool) {
	for _, k := range t.Keywords {
		if strings.Contains(input, k.Key) {
			return k.Reply, true
		}
	}
	return "", false
}

// Lookup returns the reply for an exact key
func (t *Table) Lookup(key string) (string, bool) {
	for _, k := range t.Keywords {
		if k.Key == key {
			return k.Reply, true
		}
	}
	return "", false
}

// Greeting returns one of the greetings at random
func (t *Table) Greeting() string {
	return t.Greetings[rand.IntN(len(t.Greetings))]
}
