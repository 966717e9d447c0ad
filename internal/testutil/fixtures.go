// Package testutil provides declaration fixtures and temp-file helpers for tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v4"
)

// UserDeclarations is a declaration block covering every kind: a bounded
// many-valued int, an enumeration with a default, a length-bounded string,
// an optional bool and a lookup by name.
const UserDeclarations = `user_ids: int
user_ids__many: true
user_ids__gt: 0
sort: [name, created]
sort__default: name
q: str
q__length__lte: 32
q__optional: true
active: bool
active__optional: true
owner: {model: User}
owner__field: name
owner__optional: true
`

// UserRecords returns seed records for the User model used by
// UserDeclarations. Ids are assigned by the store.
func UserRecords() []map[string]any {
	return []map[string]any{
		{"name": "Cam Saul", "email": "cam@example.com"},
		{"name": "Rasta Lulu", "email": "rasta@example.com"},
	}
}

// WriteTempFile writes content to name in a fresh temporary directory and
// returns its path. The directory is removed when the test completes.
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write temporary file: %v", err)
	}
	return path
}

// WriteTempYAML marshals doc to YAML and writes it to a temporary file.
// Returns the path to the file.
func WriteTempYAML(t *testing.T, doc any) string {
	t.Helper()

	data, err := yaml.Marshal(doc)
	if err != nil {
		t.Fatalf("Failed to marshal document to YAML: %v", err)
	}
	return WriteTempFile(t, "test.yaml", string(data))
}
