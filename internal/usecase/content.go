package usecase

import (
	"encoding/json"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andrebassi/confnav/internal/domain/entity"
)

// ValidateContent checks that content parses as its declared format.
// Only JSON and YAML are checked; blank content and other formats pass.
func ValidateContent(t entity.ConfigType, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}

	switch t.Normalize() {
	case entity.TypeJSON:
		var v any
		if err := json.Unmarshal([]byte(content), &v); err != nil {
			return &ValidationError{Field: "content", Message: "is not valid JSON: " + err.Error()}
		}
	case entity.TypeYAML:
		var v any
		if err := yaml.Unmarshal([]byte(content), &v); err != nil {
			return &ValidationError{Field: "content", Message: "is not valid YAML: " + err.Error()}
		}
	}
	return nil
}
