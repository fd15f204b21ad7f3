// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package apiclient

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

// File is an attachment forwarded to the API.
type File struct {
	Name        string
	ContentType string
	Body        io.Reader
}

type formField struct {
	name  string
	value string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// multipartRequest encodes fields and an optional file part.
func multipartRequest(method, path, cookie string, fields []formField, fileField string, file *File) (request, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return request{}, fmt.Errorf("writing field %s: %w", f.name, err)
		}
	}

	if file != nil && file.Body != nil {
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			quoteEscaper.Replace(fileField), quoteEscaper.Replace(file.Name)))
		h.Set("Content-Type", contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			return request{}, fmt.Errorf("creating file part: %w", err)
		}
		if _, err := io.Copy(part, file.Body); err != nil {
			return request{}, fmt.Errorf("copying file part: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return request{}, fmt.Errorf("closing multipart body: %w", err)
	}

	return request{
		method:      method,
		path:        path,
		cookie:      cookie,
		body:        &buf,
		contentType: w.FormDataContentType(),
	}, nil
}
