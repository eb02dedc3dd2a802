package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ItsNotGoodName/xtile/internal/keys"
	"gopkg.in/yaml.v3"
)

// Keybinding binds a key string to an action. Arg is decoded by shape: absent
// or null is none, an integer is an int, a string is a string and a sequence
// of strings is an argv.
type Keybinding struct {
	Key    string   `json:"key" yaml:"key"`
	Action string   `json:"action" yaml:"action"`
	Arg    keys.Arg `json:"arg,omitempty" yaml:"arg,omitempty"`
}

type keybindingWire struct {
	Key    string `json:"key" yaml:"key"`
	Action string `json:"action" yaml:"action"`
	Arg    any    `json:"arg,omitempty" yaml:"arg,omitempty"`
}

func argToWire(arg keys.Arg) any {
	switch v := arg.(type) {
	case keys.Int:
		return int(v)
	case keys.Str:
		return string(v)
	case keys.Argv:
		return []string(v)
	default:
		return nil
	}
}

func (k Keybinding) MarshalYAML() (any, error) {
	return keybindingWire{Key: k.Key, Action: k.Action, Arg: argToWire(k.Arg)}, nil
}

func (k *Keybinding) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Key    string    `yaml:"key"`
		Action string    `yaml:"action"`
		Arg    yaml.Node `yaml:"arg"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}

	arg, err := decodeYAMLArg(&raw.Arg)
	if err != nil {
		return fmt.Errorf("line %d: %s: %w", node.Line, raw.Key, err)
	}

	*k = Keybinding{Key: raw.Key, Action: raw.Action, Arg: arg}
	return nil
}

func decodeYAMLArg(node *yaml.Node) (keys.Arg, error) {
	switch node.Kind {
	case 0:
		return keys.None{}, nil
	case yaml.ScalarNode:
		switch node.ShortTag() {
		case "!!null":
			return keys.None{}, nil
		case "!!int":
			var i int
			if err := node.Decode(&i); err != nil {
				return nil, err
			}
			return keys.Int(i), nil
		case "!!str":
			return keys.Str(node.Value), nil
		default:
			return nil, fmt.Errorf("unsupported arg type %s", node.ShortTag())
		}
	case yaml.SequenceNode:
		var argv []string
		if err := node.Decode(&argv); err != nil {
			return nil, err
		}
		return keys.Argv(argv), nil
	default:
		return nil, fmt.Errorf("unsupported arg shape")
	}
}

func (k Keybinding) MarshalJSON() ([]byte, error) {
	return json.Marshal(keybindingWire{Key: k.Key, Action: k.Action, Arg: argToWire(k.Arg)})
}

func (k *Keybinding) UnmarshalJSON(data []byte) error {
	var raw struct {
		Key    string          `json:"key"`
		Action string          `json:"action"`
		Arg    json.RawMessage `json:"arg"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	arg, err := decodeJSONArg(raw.Arg)
	if err != nil {
		return fmt.Errorf("%s: %w", raw.Key, err)
	}

	*k = Keybinding{Key: raw.Key, Action: raw.Action, Arg: arg}
	return nil
}

func decodeJSONArg(data json.RawMessage) (keys.Arg, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return keys.None{}, nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return keys.Str(s), nil
	case '[':
		var argv []string
		if err := json.Unmarshal(data, &argv); err != nil {
			return nil, err
		}
		return keys.Argv(argv), nil
	default:
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return nil, fmt.Errorf("unsupported arg %s", data)
		}
		return keys.Int(i), nil
	}
}
