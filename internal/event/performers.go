package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Performers is either one free-text performer line or an ordered list of
// names. The zero value means no performers were listed.
type Performers struct {
	names []string
	list  bool
}

// SinglePerformer wraps a free-text performer line
func SinglePerformer(text string) Performers {
	if strings.TrimSpace(text) == "" {
		return Performers{}
	}
	return Performers{names: []string{text}}
}

// PerformerList wraps an ordered list of names
func PerformerList(names ...string) Performers {
	kept := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			kept = append(kept, n)
		}
	}
	if len(kept) == 0 {
		return Performers{}
	}
	return Performers{names: kept, list: true}
}

// IsZero reports whether no performers are listed
func (p Performers) IsZero() bool {
	return len(p.names) == 0
}

// IsList reports whether the performers came as a list
func (p Performers) IsList() bool {
	return p.list
}

// Primary returns the first performer: the single line, or the first list entry
func (p Performers) Primary() string {
	if p.IsZero() {
		return ""
	}
	return p.names[0]
}

// Names returns a copy of the listed names
func (p Performers) Names() []string {
	return append([]string(nil), p.names...)
}

// Text is the display form; list entries are joined with ", "
func (p Performers) Text() string {
	return strings.Join(p.names, ", ")
}

// Len is the length of the display form, used to compare how much detail two
// sources give.
func (p Performers) Len() int {
	return len(p.Text())
}

func (p Performers) clone() Performers {
	return Performers{names: p.Names(), list: p.list}
}

func (p Performers) MarshalJSON() ([]byte, error) {
	switch {
	case p.IsZero():
		return []byte("null"), nil
	case p.list:
		return json.Marshal(p.names)
	default:
		return json.Marshal(p.names[0])
	}
}

func (p *Performers) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case nil:
		*p = Performers{}
	case string:
		*p = SinglePerformer(v)
	case []any:
		names := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return fmt.Errorf("performers[%d] must be a string", i)
			}
			names = append(names, s)
		}
		*p = PerformerList(names...)
	default:
		return fmt.Errorf("performers must be a string or a list of strings")
	}
	return nil
}
