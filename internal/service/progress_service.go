package service

import (
	"context"
	"errors"
	"strconv"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/familyflow/familyflow-api/internal/courseconfig"
	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/models"
	"github.com/familyflow/familyflow-api/internal/observability"
	"github.com/familyflow/familyflow-api/internal/repository"
)

// CompletionInput carries everything the evaluator needs about one qualifying
// completion. Student is the post-streak snapshot so streak badge rules see
// the day's new value.
type CompletionInput struct {
	Assignment models.Assignment
	Student    models.Student
	Config     *courseconfig.CourseConfig
	Category   string
	Grade      *float64
	WPM        *float64
	Accuracy   *float64
	Minutes    int
	Date       string
}

// ProgressService maintains per-subject aggregates and evaluates badge rules.
type ProgressService interface {
	ApplyCompletion(ctx context.Context, input CompletionInput) ([]models.BadgeEarned, error)
	ReverseCompletion(ctx context.Context, studentID, subjectID uint) error
	StudentProgress(ctx context.Context, studentID uint) ([]dto.SubjectProgressResponse, error)
	Badges(ctx context.Context, studentID uint) ([]dto.BadgeResponse, error)
	DailyActivity(ctx context.Context, studentID uint, from, to string) ([]dto.DailyActivityResponse, error)
}

type progressService struct {
	repo   repository.ProgressRepository
	events EventPublisher
	logger zerolog.Logger
}

// NewProgressService builds the progress evaluator.
func NewProgressService(repo repository.ProgressRepository, events EventPublisher, logger zerolog.Logger) ProgressService {
	return &progressService{
		repo:   repo,
		events: events,
		logger: logger.With().Str("component", "progress_service").Logger(),
	}
}

// ApplyCompletion updates the subject aggregate and daily activity log, then
// evaluates every badge rule from the resolved configuration against the
// fresh state. Returns badges earned by this completion.
func (s *progressService) ApplyCompletion(ctx context.Context, input CompletionInput) ([]models.BadgeEarned, error) {
	progress, err := s.repo.GetOrCreate(ctx, input.Assignment.StudentID, input.Assignment.SubjectID)
	if err != nil {
		return nil, err
	}

	progress.CompletedTotal++
	s.applyMastery(&progress, input)
	s.applyMetrics(&progress, input)
	s.applyActivityCounts(&progress, input)
	s.applyModules(&progress, input)

	if err := s.repo.Save(ctx, &progress); err != nil {
		return nil, err
	}

	if err := s.recordDailyActivity(ctx, input); err != nil {
		return nil, err
	}

	return s.evaluateBadges(ctx, progress, input)
}

// ReverseCompletion undoes the completion counter only. Badges stay earned
// and the streak is untouched; achievements are permanent even when the
// triggering activity is reversed.
func (s *progressService) ReverseCompletion(ctx context.Context, studentID, subjectID uint) error {
	progress, err := s.repo.GetOrCreate(ctx, studentID, subjectID)
	if err != nil {
		return err
	}
	if progress.CompletedTotal > 0 {
		progress.CompletedTotal--
	}
	return s.repo.Save(ctx, &progress)
}

func (s *progressService) applyMastery(progress *models.SubjectProgress, input CompletionInput) {
	if input.Config == nil || input.Grade == nil {
		return
	}
	if input.Category != input.Config.TopicTestCategory {
		return
	}

	mastery := progress.Mastery.Data()
	if mastery == nil {
		mastery = map[string]models.MasteryRecord{}
	}

	testID := strconv.FormatUint(uint64(input.Assignment.ID), 10)
	record := mastery[testID]
	if *input.Grade > record.BestScore {
		record.BestScore = *input.Grade
	}
	if record.BestScore >= input.Config.MasteryThreshold {
		record.Achieved = true
	}
	mastery[testID] = record
	progress.Mastery = datatypesJSON(mastery)
}

func (s *progressService) applyMetrics(progress *models.SubjectProgress, input CompletionInput) {
	metrics := progress.Metrics.Data()

	if input.WPM != nil {
		if metrics.WPMBaseline == 0 {
			metrics.WPMBaseline = *input.WPM
		}
		metrics.WPMCurrent = *input.WPM
		if *input.WPM > metrics.WPMHigh {
			metrics.WPMHigh = *input.WPM
		}
	}

	if input.Accuracy != nil {
		total := metrics.AccuracyAverage*float64(metrics.AccuracySamples) + *input.Accuracy
		metrics.AccuracySamples++
		metrics.AccuracyAverage = total / float64(metrics.AccuracySamples)
	}

	progress.Metrics = datatypesJSON(metrics)
}

func (s *progressService) applyActivityCounts(progress *models.SubjectProgress, input CompletionInput) {
	if input.Grade == nil {
		return
	}

	counts := progress.ActivityCounts.Data()
	if counts == nil {
		counts = map[string]int{}
	}

	grade := *input.Grade
	if grade >= 95 {
		counts[models.CountGrade95Plus]++
	}
	if grade >= 97 {
		counts[models.CountGrade97Plus]++
	}
	if grade >= 100 && input.Config != nil && input.Category == input.Config.TopicTestCategory {
		counts[models.CountPerfectEOL]++
	}

	progress.ActivityCounts = datatypesJSON(counts)
}

func (s *progressService) applyModules(progress *models.SubjectProgress, input CompletionInput) {
	moduleID := input.Assignment.ModuleID
	if moduleID == "" {
		return
	}
	for _, existing := range progress.CompletedModules {
		if existing == moduleID {
			return
		}
	}
	progress.CompletedModules = append(progress.CompletedModules, moduleID)
}

func (s *progressService) recordDailyActivity(ctx context.Context, input CompletionInput) error {
	activity, err := s.repo.GetDailyActivity(ctx, input.Assignment.StudentID, input.Date)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		activity = models.DailyActivity{StudentID: input.Assignment.StudentID, Date: input.Date}
	}

	activity.Assignments++
	activity.Minutes += input.Minutes

	subjectMinutes := activity.SubjectMinutes.Data()
	if subjectMinutes == nil {
		subjectMinutes = map[uint]int{}
	}
	subjectMinutes[input.Assignment.SubjectID] += input.Minutes
	activity.SubjectMinutes = datatypesJSON(subjectMinutes)

	if input.Category != "" {
		categories := activity.Categories.Data()
		if categories == nil {
			categories = map[string]int{}
		}
		categories[input.Category]++
		activity.Categories = datatypesJSON(categories)
	}

	return s.repo.SaveDailyActivity(ctx, &activity)
}

// evaluateBadges runs every configured rule against the updated aggregate.
// A badge is awarded at most once per student; the earned set is checked
// before insert and a unique index backs that up.
func (s *progressService) evaluateBadges(ctx context.Context, progress models.SubjectProgress, input CompletionInput) ([]models.BadgeEarned, error) {
	if input.Config == nil {
		return nil, nil
	}

	var earned []models.BadgeEarned
	for _, rule := range input.Config.Badges {
		if rule.ID == "" {
			continue
		}
		if rule.Kind == courseconfig.RuleCourseCompletion {
			// Recognised but not evaluated yet; see DESIGN.md.
			s.logger.Debug().Str("badge_id", rule.ID).Msg("course completion rules are not evaluated")
			continue
		}
		if !s.ruleSatisfied(rule, progress, input) {
			continue
		}

		already, err := s.repo.HasBadge(ctx, input.Student.ID, rule.ID)
		if err != nil {
			return earned, err
		}
		if already {
			continue
		}

		subjectID := input.Assignment.SubjectID
		badge := models.BadgeEarned{
			StudentID: input.Student.ID,
			BadgeID:   rule.ID,
			Name:      rule.Name,
			SubjectID: &subjectID,
		}
		if err := s.repo.CreateBadge(ctx, &badge); err != nil {
			return earned, err
		}

		earned = append(earned, badge)
		observability.BadgesAwarded().Inc()
		s.events.Publish(ctx, Event{
			Type:      EventBadgeEarned,
			StudentID: input.Student.ID,
			Payload:   map[string]interface{}{"badge_id": rule.ID, "name": rule.Name},
		})
		s.logger.Info().Uint("student_id", input.Student.ID).Str("badge_id", rule.ID).Msg("badge earned")
	}

	return earned, nil
}

func (s *progressService) ruleSatisfied(rule courseconfig.BadgeRule, progress models.SubjectProgress, input CompletionInput) bool {
	switch rule.Kind {
	case courseconfig.RuleMetricThreshold:
		metrics := progress.Metrics.Data()
		switch rule.Metric {
		case "wpm":
			return metrics.WPMCurrent >= rule.Threshold
		case "wpm_high":
			return metrics.WPMHigh >= rule.Threshold
		case "accuracy":
			return metrics.AccuracyAverage >= rule.Threshold
		default:
			return false
		}
	case courseconfig.RuleStreak:
		return float64(input.Student.CurrentStreak) >= rule.Threshold
	case courseconfig.RuleCountThreshold:
		counts := progress.ActivityCounts.Data()
		return float64(counts[rule.CountKey]) >= rule.Threshold
	case courseconfig.RuleModuleCompletion:
		for _, moduleID := range progress.CompletedModules {
			if moduleID == rule.ModuleID {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func (s *progressService) StudentProgress(ctx context.Context, studentID uint) ([]dto.SubjectProgressResponse, error) {
	rows, err := s.repo.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewSubjectProgressResponseSlice(rows), nil
}

func (s *progressService) Badges(ctx context.Context, studentID uint) ([]dto.BadgeResponse, error) {
	badges, err := s.repo.ListBadges(ctx, studentID)
	if err != nil {
		return nil, err
	}
	return dto.NewBadgeResponseSlice(badges), nil
}

func (s *progressService) DailyActivity(ctx context.Context, studentID uint, from, to string) ([]dto.DailyActivityResponse, error) {
	rows, err := s.repo.ListDailyActivity(ctx, studentID, from, to)
	if err != nil {
		return nil, err
	}
	return dto.NewDailyActivityResponseSlice(rows), nil
}
