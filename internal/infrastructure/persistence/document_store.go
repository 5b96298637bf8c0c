package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/erp/retail/internal/domain/shared"
)

// documentIndent is the indentation of persisted documents
const documentIndent = "    "

// readDocument reads a JSON array document and returns its raw records.
// exists is false when the file is absent, which is not an error.
func readDocument(path string) (records []json.RawMessage, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, true, shared.WrapDomainError(shared.CodeStorageRead, err, "Cannot read %s", path)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, true, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, true, shared.WrapDomainError(shared.CodeStorageRead, err, "Cannot parse %s", path)
	}
	return records, true, nil
}

// writeDocument replaces path with the JSON encoding of v.
// The data goes to a temp file in the same directory, is fsynced, then renamed over path.
func writeDocument(path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", documentIndent)
	if err := enc.Encode(v); err != nil {
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot encode %s", path)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot create directory %s", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot create temp file for %s", path)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		cleanup()
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot close %s", path)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot set mode of %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return shared.WrapDomainError(shared.CodeStorageWrite, err, "Cannot replace %s", path)
	}
	return nil
}
