package serializer

import (
	"bytes"
	"io"

	"go.yaml.in/yaml/v3"
)

// MimeTypeYAML is the content type written by the YAML serializer.
const MimeTypeYAML = "application/yaml"

var yamlMediaTypes = []string{"application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml"}

// YAML encodes values with go.yaml.in/yaml/v3.
type YAML struct{}

// NewYAML creates a YAML serializer.
func NewYAML() *YAML { return &YAML{} }

func (s *YAML) MimeType() string { return MimeTypeYAML }

func (s *YAML) CanRead(mimeType string) bool {
	for _, mt := range yamlMediaTypes {
		if MatchMediaType(mt, mimeType) {
			return true
		}
	}
	return false
}

func (s *YAML) CanWrite(v any) bool { return encodable(v) }

func (s *YAML) Serialize(v any) (io.Reader, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return nil, serializeError(v, err)
	}
	return bytes.NewReader(b), nil
}

func (s *YAML) Deserialize(data []byte, t Type) (any, error) {
	target, err := newTarget(t)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, target.Interface()); err != nil {
		return nil, deserializeError(data, t, err)
	}
	return target.Elem().Interface(), nil
}
