package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// Resolution is the outcome of config resolution for one assignment. Config
// may be nil and CategoryKey empty; both mean "no points policy applies".
type Resolution struct {
	Config      *courseconfig.CourseConfig
	ConfigID    string
	CategoryKey string
}

// ConfigResolver determines which curriculum configuration and category key
// apply to an assignment.
type ConfigResolver interface {
	Resolve(ctx context.Context, assignment models.Assignment) (Resolution, error)
}

type configResolver struct {
	subjects repository.SubjectRepository
	configs  *courseconfig.Store
	logger   zerolog.Logger
}

// NewConfigResolver builds a resolver over the loaded config store.
func NewConfigResolver(subjects repository.SubjectRepository, configs *courseconfig.Store, logger zerolog.Logger) ConfigResolver {
	return &configResolver{
		subjects: subjects,
		configs:  configs,
		logger:   logger.With().Str("component", "config_resolver").Logger(),
	}
}

// Resolve walks the fallback chain: the assignment's own config id, then the
// subject's configured id, then subject-name heuristics. The category key
// prefers the stored key and otherwise falls back to assignment-name rules.
// All of this is best effort; an unresolvable assignment earns zero points.
func (r *configResolver) Resolve(ctx context.Context, assignment models.Assignment) (Resolution, error) {
	configID := assignment.CourseConfigID

	var subject models.Subject
	if configID == "" && assignment.SubjectID != 0 {
		var err error
		subject, err = r.subjects.GetByID(ctx, assignment.SubjectID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return Resolution{}, err
		}
		configID = subject.CourseConfigID
		if configID == "" {
			configID = r.configs.MatchSubject(subject.Name)
		}
	}

	cfg := r.configs.Get(configID)
	if configID != "" && cfg == nil {
		r.logger.Debug().Str("config_id", configID).Uint("assignment_id", assignment.ID).
			Msg("assignment references unknown course config")
	}

	categoryKey := assignment.CategoryKey
	if categoryKey == "" {
		categoryKey = courseconfig.InferCategory(assignment.Name, cfg)
	}

	return Resolution{Config: cfg, ConfigID: configID, CategoryKey: categoryKey}, nil
}
