package protocol

import (
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSON writes the protocol as indented JSON
func WriteJSON(w io.Writer, p *Protocol) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to serialize protocol: %w", err)
	}
	return nil
}

// ReadJSON reads a protocol written by WriteJSON
func ReadJSON(r io.Reader) (*Protocol, error) {
	var p Protocol
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse protocol: %w", err)
	}
	if len(p.Commands) == 0 {
		return nil, fmt.Errorf("protocol has no commands")
	}
	if p.TipsUsed == nil {
		p.TipsUsed = make(map[string]int)
	}
	return &p, nil
}
