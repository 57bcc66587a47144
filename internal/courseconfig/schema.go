package courseconfig

// Curriculum configuration is externally authored JSON and is treated as
// untrusted, partially-missing data: every numeric field defaults to zero or
// a documented fallback, and a missing section means "no-op", never an error.

// Category defines how many base points an assignment category is worth.
type Category struct {
	BasePoints int    `json:"base_points"`
	Label      string `json:"label"`
}

// MultiplierRule scales points for a category, optionally gated on a minimum
// grade. Matching rules compose multiplicatively.
type MultiplierRule struct {
	Category string   `json:"category"`
	Factor   float64  `json:"factor"`
	MinGrade *float64 `json:"min_grade"`
}

// StreakTier maps a consecutive-day streak length onto a bonus percentage.
type StreakTier struct {
	Days         int     `json:"days"`
	BonusPercent float64 `json:"bonus_percent"`
}

// Badge rule kinds understood by the progress evaluator. Course-completion
// rules are recognised but not evaluated yet; they are skipped with a log
// line rather than silently dropped at load time.
const (
	RuleMetricThreshold  = "metric_threshold"
	RuleStreak           = "streak"
	RuleCountThreshold   = "count_threshold"
	RuleModuleCompletion = "module_completion"
	RuleCourseCompletion = "course_completion"
)

// BadgeRule is one declarative badge trigger.
type BadgeRule struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Kind      string  `json:"kind"`
	Metric    string  `json:"metric"`
	Threshold float64 `json:"threshold"`
	CountKey  string  `json:"count_key"`
	ModuleID  string  `json:"module_id"`
}

// CategoryHint maps an assignment-name substring onto a category key. Config
// level hints run before the built-in vocabulary, letting skill courses remap
// generic names.
type CategoryHint struct {
	Contains string `json:"contains"`
	Key      string `json:"key"`
}

// CourseConfig is one curriculum policy document.
type CourseConfig struct {
	ID                     string              `json:"id"`
	Name                   string              `json:"name"`
	SubjectHints           []string            `json:"subject_hints"`
	Categories             map[string]Category `json:"categories"`
	Multipliers            []MultiplierRule    `json:"multipliers"`
	StreakSchedule         []StreakTier        `json:"streak_schedule"`
	MaxStreakBonusPercent  float64             `json:"max_streak_bonus_percent"`
	MasteryThreshold       float64             `json:"mastery_threshold"`
	TopicTestCategory      string              `json:"topic_test_category"`
	ImprovementBonusPoints int                 `json:"improvement_bonus_points"`
	CategoryHints          []CategoryHint      `json:"category_hints"`
	Badges                 []BadgeRule         `json:"badges"`
}

// Defaults applied when the authored document omits a field.
const (
	DefaultMasteryThreshold  = 95.0
	DefaultTopicTestCategory = "topic_test"
	DefaultMaxStreakBonus    = 20.0
)

// DefaultStreakSchedule is used when a config carries no schedule of its own.
var DefaultStreakSchedule = []StreakTier{
	{Days: 3, BonusPercent: 5},
	{Days: 7, BonusPercent: 10},
	{Days: 14, BonusPercent: 15},
	{Days: 30, BonusPercent: 20},
}

// applyDefaults normalises a freshly decoded config in place.
func (c *CourseConfig) applyDefaults() {
	if c.Categories == nil {
		c.Categories = map[string]Category{}
	}
	if c.MasteryThreshold <= 0 {
		c.MasteryThreshold = DefaultMasteryThreshold
	}
	if c.TopicTestCategory == "" {
		c.TopicTestCategory = DefaultTopicTestCategory
	}
	if c.MaxStreakBonusPercent <= 0 {
		c.MaxStreakBonusPercent = DefaultMaxStreakBonus
	}
	if len(c.StreakSchedule) == 0 {
		c.StreakSchedule = append([]StreakTier(nil), DefaultStreakSchedule...)
	}
	if c.ImprovementBonusPoints < 0 {
		c.ImprovementBonusPoints = 0
	}
	cleaned := c.Multipliers[:0]
	for _, rule := range c.Multipliers {
		if rule.Factor > 0 && rule.Category != "" {
			cleaned = append(cleaned, rule)
		}
	}
	c.Multipliers = cleaned
}

// BasePointsFor returns the configured base points for a category key, zero
// when the category is unknown.
func (c *CourseConfig) BasePointsFor(key string) int {
	if c == nil || key == "" {
		return 0
	}
	return c.Categories[key].BasePoints
}
