package endpoint

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"

	"github.com/kbukum/restkit/errors"
	"github.com/kbukum/restkit/serializer"
)

// Part is one named section of a multipart request.
type Part struct {
	// Name is the form field name.
	Name string
	// Value is encoded by the first serializer that accepts it (typed parts).
	Value any
	// ContentType, Filename and Data describe a binary part.
	ContentType string
	Filename    string
	Data        []byte

	binary bool
}

// IsBinary reports whether the part is sent as-is.
func (p Part) IsBinary() bool { return p.binary }

// MultiPartRequest is an ordered list of parts sent as multipart/form-data.
type MultiPartRequest struct {
	parts []Part
}

// NewMultiPartRequest creates an empty multipart request.
func NewMultiPartRequest() *MultiPartRequest {
	return &MultiPartRequest{}
}

// AddSerialized appends a part whose value goes through serializer selection.
func (m *MultiPartRequest) AddSerialized(name string, value any) *MultiPartRequest {
	m.parts = append(m.parts, Part{Name: name, Value: value})
	return m
}

// AddBinary appends raw data with an explicit content type and filename.
// An empty content type is sent as application/octet-stream.
func (m *MultiPartRequest) AddBinary(name, contentType, filename string, data []byte) *MultiPartRequest {
	if contentType == "" {
		contentType = serializer.MimeTypeOctetStream
	}
	m.parts = append(m.parts, Part{
		Name:        name,
		ContentType: contentType,
		Filename:    filename,
		Data:        data,
		binary:      true,
	})
	return m
}

// Parts returns the parts in insertion order.
func (m *MultiPartRequest) Parts() []Part {
	return append([]Part(nil), m.parts...)
}

// Len returns the number of parts.
func (m *MultiPartRequest) Len() int { return len(m.parts) }

// encode writes every part into a form-data body and returns it with its
// content type, boundary included.
func (m *MultiPartRequest) encode(reg *serializer.Registry) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, p := range m.parts {
		header := make(textproto.MIMEHeader)
		var content io.Reader

		if p.binary {
			header.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(p.Name), escapeQuotes(p.Filename)))
			header.Set("Content-Type", p.ContentType)
			content = bytes.NewReader(p.Data)
		} else {
			s, err := reg.ForWrite(p.Value)
			if err != nil {
				return nil, "", err
			}
			r, err := s.Serialize(p.Value)
			if err != nil {
				return nil, "", err
			}
			header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"`, escapeQuotes(p.Name)))
			header.Set("Content-Type", s.MimeType())
			content = r
		}

		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", errors.Serialization(fmt.Sprintf("unable to write multipart part '%s'", p.Name), err)
		}
		if _, err := io.Copy(part, content); err != nil {
			return nil, "", errors.Serialization(fmt.Sprintf("unable to write multipart part '%s'", p.Name), err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", errors.Serialization("unable to finish multipart body", err)
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
