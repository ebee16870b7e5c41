package httpcore_test

import (
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/firasghr/httpengine/httpcore"
)

func TestMultipartForm_FieldsAndFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "upload.txt")
	if err := os.WriteFile(path, []byte("file contents"), 0o644); err != nil {
		t.Fatal(err)
	}

	form := httpcore.NewMultipartForm()
	if err := form.AddField("name", "value"); err != nil {
		t.Fatalf("AddField: %v", err)
	}
	if err := form.AddFile("upload", path); err != nil {
		t.Fatalf("AddFile: %v", err)
	}

	body, contentType, err := form.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}

	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type %q: %v", contentType, err)
	}
	reader := multipart.NewReader(strings.NewReader(string(body)), params["boundary"])

	foundField, foundFile := false, false
	for {
		part, err := reader.NextPart()
		if err != nil {
			break
		}
		switch part.FormName() {
		case "name":
			foundField = true
		case "upload":
			foundFile = true
			if part.FileName() != "upload.txt" {
				t.Errorf("filename: got %q, want upload.txt", part.FileName())
			}
		}
	}
	if !foundField || !foundFile {
		t.Errorf("expected both a field and a file part, got field=%v file=%v", foundField, foundFile)
	}
}

func TestMultipartForm_PanicsAfterClose(t *testing.T) {
	form := httpcore.NewMultipartForm()
	if _, _, err := form.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("expected a panic when adding a field after Close")
		}
	}()
	form.AddField("too-late", "value")
}
