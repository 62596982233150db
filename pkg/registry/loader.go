package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "mergington-activities/internal/common/errors"
)

// LoadCatalog reads a JSON catalog file and validates it before decoding.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog validates data against the catalog schema and decodes it.
func ParseCatalog(data []byte) (Catalog, error) {
	if err := ValidateCatalog(data); err != nil {
		return nil, err
	}

	var c Catalog
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, apperrors.NewCatalogInvalidError(fmt.Sprintf("decode: %v", err))
	}
	return c, nil
}

func ValidateCatalog(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(catalogSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return apperrors.NewCatalogInvalidError(fmt.Sprintf("schema validation error: %v", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return apperrors.NewCatalogInvalidError(strings.Join(msgs, "; "))
}

// SaveCatalog writes c as indented JSON.
func SaveCatalog(c Catalog, path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
