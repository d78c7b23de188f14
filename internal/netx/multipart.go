package netx

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/textproto"
)

// Field is one plain multipart form value.
type Field struct {
	Name  string
	Value string
}

// FormFile is the file part of a multipart form.
type FormFile struct {
	Field       string
	FileName    string
	ContentType string
	Data        []byte
}

// BuildMultipart encodes file followed by fields, in order, as a
// multipart/form-data body. The returned content type carries the boundary.
func BuildMultipart(file FormFile, fields ...Field) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, file.Field, file.FileName))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create file part: %w", err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return nil, "", fmt.Errorf("write file part: %w", err)
	}

	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
