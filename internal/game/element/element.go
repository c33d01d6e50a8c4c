// Package element defines the elemental types and the effectiveness chart
// that scales damage between an attacking and a defending element.
package element

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind is an elemental type. The zero value is None.
type Kind int

const (
	None Kind = iota
	Fire
	Ice
	Shock
	Dark
	Light
)

// All lists every Kind in declaration order.
var All = []Kind{None, Fire, Ice, Shock, Dark, Light}

var names = map[Kind]string{
	None:  "none",
	Fire:  "fire",
	Ice:   "ice",
	Shock: "shock",
	Dark:  "dark",
	Light: "light",
}

// String returns the lowercase element name.
func (k Kind) String() string {
	if n, ok := names[k]; ok {
		return n
	}
	return "unknown"
}

// Parse converts a case-insensitive element name into a Kind.
// The empty string parses as None.
//
// Postcondition: Returns the matching Kind, or an error for unknown names.
func Parse(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return None, nil
	}
	for k, n := range names {
		if n == s {
			return k, nil
		}
	}
	return None, fmt.Errorf("element: unknown element %q", s)
}

// UnmarshalYAML decodes an element name scalar.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("element: decoding yaml: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes the element as its name.
func (k Kind) MarshalYAML() (interface{}, error) {
	return k.String(), nil
}

// beats maps each element of the Fire→Ice→Shock→Fire cycle to the element it beats.
var beats = map[Kind]Kind{
	Fire:  Ice,
	Ice:   Shock,
	Shock: Fire,
}

// Multiplier returns the damage multiplier for an attack of element atk against
// a defender of element def.
//
// Rules, first match wins:
//   - either side None: 1.0
//   - same element: 0.5
//   - Fire→Ice, Ice→Shock, Shock→Fire: 2.0; the reverse direction: 0.5
//   - Dark↔Light: 2.0 both ways
//   - anything else: 1.0
//
// Postcondition: Returns one of 0.5, 1.0, 2.0.
func Multiplier(atk, def Kind) float64 {
	if atk == None || def == None {
		return 1.0
	}
	if atk == def {
		return 0.5
	}
	if target, ok := beats[atk]; ok && target == def {
		return 2.0
	}
	if target, ok := beats[def]; ok && target == atk {
		return 0.5
	}
	if (atk == Dark && def == Light) || (atk == Light && def == Dark) {
		return 2.0
	}
	return 1.0
}
