package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// JSON encodes envelopes as indented JSON.
type JSON struct{}

type jsonEnvelope struct {
	Version int               `json:"version"`
	Records []json.RawMessage `json:"records"`
}

// Name implements Format.
func (JSON) Name() string { return "json" }

// Encode implements Format.
func (JSON) Encode(records any) ([]byte, error) {
	payload := map[string]any{
		"version": Version,
		"records": records,
	}
	return json.MarshalIndent(payload, "", "  ")
}

// Split implements Format.
func (JSON) Split(data []byte) ([]Record, error) {
	var env jsonEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	if env.Version > Version {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	out := make([]Record, 0, len(env.Records))
	for _, raw := range env.Records {
		out = append(out, jsonRecord(raw))
	}
	return out, nil
}

// JSONRecord wraps a raw JSON value so it can be decoded with the strict rules of this package.
func JSONRecord(raw json.RawMessage) Record {
	return jsonRecord(raw)
}

type jsonRecord json.RawMessage

func (r jsonRecord) Decode(v any) error {
	dec := json.NewDecoder(bytes.NewReader(r))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}
