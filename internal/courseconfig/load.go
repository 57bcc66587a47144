package courseconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is intentionally permissive: it checks types, not presence.
// Missing fields default at decode time; only structurally broken documents
// are rejected.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "name": {"type": "string"},
    "subject_hints": {"type": "array", "items": {"type": "string"}},
    "categories": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "base_points": {"type": "integer", "minimum": 0},
          "label": {"type": "string"}
        }
      }
    },
    "multipliers": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "category": {"type": "string"},
          "factor": {"type": "number", "minimum": 0},
          "min_grade": {"type": ["number", "null"]}
        }
      }
    },
    "streak_schedule": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "days": {"type": "integer", "minimum": 1},
          "bonus_percent": {"type": "number", "minimum": 0}
        }
      }
    },
    "max_streak_bonus_percent": {"type": "number"},
    "mastery_threshold": {"type": "number"},
    "topic_test_category": {"type": "string"},
    "improvement_bonus_points": {"type": "integer"},
    "category_hints": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "contains": {"type": "string"},
          "key": {"type": "string"}
        }
      }
    },
    "badges": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "id": {"type": "string"},
          "name": {"type": "string"},
          "kind": {"type": "string"},
          "metric": {"type": "string"},
          "threshold": {"type": "number"},
          "count_key": {"type": "string"},
          "module_id": {"type": "string"}
        }
      }
    }
  },
  "required": ["id"]
}`

// Store holds every loaded curriculum configuration, keyed by id.
type Store struct {
	configs map[string]*CourseConfig
	ordered []*CourseConfig
	logger  zerolog.Logger
}

// NewStore builds an empty store.
func NewStore(logger zerolog.Logger) *Store {
	return &Store{
		configs: map[string]*CourseConfig{},
		logger:  logger.With().Str("component", "courseconfig").Logger(),
	}
}

// LoadDir reads every *.json document under dir. Broken documents are logged
// and skipped so one bad file cannot take the catalog down.
func (s *Store) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read course config dir: %w", err)
	}

	schema, err := jsonschema.CompileString("courseconfig.schema.json", schemaJSON)
	if err != nil {
		return fmt.Errorf("failed to compile course config schema: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("failed to read course config")
			continue
		}
		cfg, err := Parse(data, schema)
		if err != nil {
			s.logger.Warn().Err(err).Str("file", entry.Name()).Msg("skipping invalid course config")
			continue
		}
		s.Add(cfg)
	}

	s.logger.Info().Int("configs", len(s.configs)).Msg("course configs loaded")
	return nil
}

// Add registers a config, replacing any earlier document with the same id.
func (s *Store) Add(cfg *CourseConfig) {
	if cfg == nil || cfg.ID == "" {
		return
	}
	if _, exists := s.configs[cfg.ID]; !exists {
		s.ordered = append(s.ordered, cfg)
	} else {
		for i, existing := range s.ordered {
			if existing.ID == cfg.ID {
				s.ordered[i] = cfg
				break
			}
		}
	}
	s.configs[cfg.ID] = cfg
	sort.Slice(s.ordered, func(i, j int) bool { return s.ordered[i].ID < s.ordered[j].ID })
}

// Get returns the config for an id, or nil when unknown.
func (s *Store) Get(id string) *CourseConfig {
	if s == nil || id == "" {
		return nil
	}
	return s.configs[id]
}

// All returns the loaded configs in deterministic id order.
func (s *Store) All() []*CourseConfig {
	return s.ordered
}

// Parse decodes one configuration document. Legacy documents use camelCase
// keys; they are normalised to the canonical snake_case schema here, at the
// boundary, so business logic only ever sees one naming convention.
func Parse(data []byte, schema *jsonschema.Schema) (*CourseConfig, error) {
	var raw interface{}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	raw = normalizeKeys(raw)

	if schema != nil {
		if err := schema.Validate(raw); err != nil {
			return nil, fmt.Errorf("schema validation failed: %w", err)
		}
	}

	canonical, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}

	var cfg CourseConfig
	if err := json.Unmarshal(canonical, &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode course config: %w", err)
	}
	if cfg.ID == "" {
		return nil, fmt.Errorf("course config is missing an id")
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func normalizeKeys(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for key, child := range v {
			normalized[toSnakeCase(key)] = normalizeKeys(child)
		}
		return normalized
	case []interface{}:
		for i, child := range v {
			v[i] = normalizeKeys(child)
		}
		return v
	default:
		return value
	}
}

func toSnakeCase(key string) string {
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
