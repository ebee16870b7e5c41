package httpcore

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
)

// MultipartForm builds a multi-part body. It is exclusively owned by its
// builder: parts may be appended but never removed, and Close finalizes the
// body exactly once — a second Close (or any Add* call after Close) panics,
// standing in for the move-only ownership curl_mime* enforces in the
// source.
type MultipartForm struct {
	buf    bytes.Buffer
	writer *multipart.Writer
	closed bool
}

// NewMultipartForm returns an empty form ready to accept parts.
func NewMultipartForm() *MultipartForm {
	f := &MultipartForm{}
	f.writer = multipart.NewWriter(&f.buf)
	return f
}

func (f *MultipartForm) checkOpen() {
	if f.closed {
		panic("httpcore: multipart form used after Close")
	}
}

// AddField appends a plain form field.
func (f *MultipartForm) AddField(name, value string) error {
	f.checkOpen()
	return f.writer.WriteField(name, value)
}

// AddFieldWithType appends a field with an explicit Content-Type, for
// payloads that are not plain text (e.g. a JSON blob part).
func (f *MultipartForm) AddFieldWithType(name, content, contentType string) error {
	f.checkOpen()
	part, err := f.writer.CreatePart(partHeader(name, "", contentType))
	if err != nil {
		return err
	}
	_, err = part.Write([]byte(content))
	return err
}

// AddFile opens path and streams its contents as a file part named name.
func (f *MultipartForm) AddFile(name, path string) error {
	f.checkOpen()
	file, err := os.Open(path) // #nosec G304 – caller-supplied upload path
	if err != nil {
		return fmt.Errorf("httpcore: open %q for multipart upload: %w", path, err)
	}
	defer file.Close()
	return f.AddFileReader(name, filepath.Base(path), file)
}

// AddFileReader streams r into a file part named name with the given
// filename, without requiring the data to live on disk.
func (f *MultipartForm) AddFileReader(name, filename string, r io.Reader) error {
	f.checkOpen()
	part, err := f.writer.CreateFormFile(name, filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}

// Close finalizes the multipart body and returns it along with the
// Content-Type header (including the boundary) the Session must attach.
// The form must not be used again after Close.
func (f *MultipartForm) Close() (body []byte, contentType string, err error) {
	f.checkOpen()
	f.closed = true
	if err := f.writer.Close(); err != nil {
		return nil, "", err
	}
	return f.buf.Bytes(), f.writer.FormDataContentType(), nil
}

func partHeader(name, filename, contentType string) textproto.MIMEHeader {
	h := textproto.MIMEHeader{
		"Content-Disposition": {fmt.Sprintf(`form-data; name=%q`, name)},
	}
	if filename != "" {
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, name, filename))
	}
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	return h
}
