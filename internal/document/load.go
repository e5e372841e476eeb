package document

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/teachsync/internal/model"
)

// Load reads and decodes the document at path.
func Load(path string) (*model.Document, error) {
	data, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// ReadFile reads the raw document bytes. A missing file is CodeNotFound;
// any other read failure is CodePersistence.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, model.Wrap(model.CodeNotFound, "load", err, "document not found: %s", path)
	}
	if err != nil {
		return nil, model.Wrap(model.CodePersistence, "load", err, "read %s", path)
	}
	return data, nil
}

// Decode parses YAML bytes into a document.
func Decode(data []byte) (*model.Document, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, model.Errorf(model.CodeEmptyDocument, "load", "document is empty")
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "load", err, "parse YAML")
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 {
		return nil, model.Errorf(model.CodeEmptyDocument, "load", "document is empty")
	}
	top := root.Content[0]
	if top.Kind == yaml.ScalarNode && top.ShortTag() == "!!null" {
		return nil, model.Errorf(model.CodeEmptyDocument, "load", "document is empty")
	}
	if top.Kind != yaml.MappingNode {
		return nil, model.Errorf(model.CodeMalformedDocument, "load",
			"line %d: top level must be a mapping", top.Line)
	}

	// Decode into a fresh value so a failure never leaks a partial model.
	doc := &model.Document{}
	if err := top.Decode(doc); err != nil {
		return nil, model.Wrap(model.CodeMalformedDocument, "load", err, "decode document")
	}
	if doc.AuditLog == nil {
		doc.AuditLog = []model.AuditEntry{}
	}
	return doc, nil
}

// Encode renders the document as YAML with two-space indentation.
func Encode(doc *model.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, model.Wrap(model.CodeInternal, "encode", err, "encode document")
	}
	if err := enc.Close(); err != nil {
		return nil, model.Wrap(model.CodeInternal, "encode", err, "encode document")
	}
	return buf.Bytes(), nil
}

// IsYAMLPath reports whether path has a YAML extension.
func IsYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}
