package codec

import (
	"bytes"
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAML encodes envelopes as YAML documents.
type YAML struct{}

type yamlEnvelope struct {
	Version int         `yaml:"version"`
	Records []yaml.Node `yaml:"records"`
}

// Name implements Format.
func (YAML) Name() string { return "yaml" }

// Encode implements Format.
func (YAML) Encode(records any) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	payload := struct {
		Version int `yaml:"version"`
		Records any `yaml:"records"`
	}{Version: Version, Records: records}
	if err := encoder.Encode(payload); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Split implements Format.
func (YAML) Split(data []byte) ([]Record, error) {
	var env yamlEnvelope
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("invalid yaml: %w", err)
	}
	if env.Version > Version {
		return nil, fmt.Errorf("unsupported envelope version %d", env.Version)
	}
	out := make([]Record, 0, len(env.Records))
	for i := range env.Records {
		out = append(out, yamlRecord{node: &env.Records[i]})
	}
	return out, nil
}

type yamlRecord struct {
	node *yaml.Node
}

// Decode re-encodes the node so the decoder can reject unknown fields;
// yaml.Node.Decode has no strict mode.
func (r yamlRecord) Decode(v any) error {
	raw, err := yaml.Marshal(r.node)
	if err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid record: %w", err)
	}
	return nil
}
