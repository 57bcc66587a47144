package courseconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`{"id": "math-7"}`), nil)
	require.NoError(t, err)

	require.Equal(t, "math-7", cfg.ID)
	require.Equal(t, DefaultMasteryThreshold, cfg.MasteryThreshold)
	require.Equal(t, DefaultTopicTestCategory, cfg.TopicTestCategory)
	require.Equal(t, DefaultMaxStreakBonus, cfg.MaxStreakBonusPercent)
	require.Equal(t, DefaultStreakSchedule, cfg.StreakSchedule)
	require.NotNil(t, cfg.Categories)
}

func TestParseNormalizesCamelCaseKeys(t *testing.T) {
	doc := `{
		"id": "typing",
		"subjectHints": ["typing"],
		"masteryThreshold": 80,
		"topicTestCategory": "speed_test",
		"maxStreakBonusPercent": 30,
		"categoryHints": [{"contains": "drill", "key": "drill"}]
	}`

	cfg, err := Parse([]byte(doc), nil)
	require.NoError(t, err)

	require.Equal(t, []string{"typing"}, cfg.SubjectHints)
	require.Equal(t, 80.0, cfg.MasteryThreshold)
	require.Equal(t, "speed_test", cfg.TopicTestCategory)
	require.Equal(t, 30.0, cfg.MaxStreakBonusPercent)
	require.Len(t, cfg.CategoryHints, 1)
	require.Equal(t, "drill", cfg.CategoryHints[0].Key)
}

func TestParseRejectsMissingID(t *testing.T) {
	_, err := Parse([]byte(`{"name": "orphan"}`), nil)
	require.Error(t, err)
}

func TestParseDropsBrokenMultipliers(t *testing.T) {
	doc := `{
		"id": "math-7",
		"multipliers": [
			{"category": "worksheet", "factor": 2},
			{"category": "", "factor": 2},
			{"category": "quiz", "factor": 0}
		]
	}`

	cfg, err := Parse([]byte(doc), nil)
	require.NoError(t, err)
	require.Len(t, cfg.Multipliers, 1)
	require.Equal(t, "worksheet", cfg.Multipliers[0].Category)
}

func TestLoadDirSkipsBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"id": "math-7", "subject_hints": ["math"]}`)
	writeFile(t, dir, "broken.json", `{"id": 42}`)
	writeFile(t, dir, "not-json.json", `{{{`)
	writeFile(t, dir, "ignored.txt", `{"id": "nope"}`)

	store := NewStore(testLogger())
	require.NoError(t, store.LoadDir(dir))

	require.Len(t, store.All(), 1)
	require.NotNil(t, store.Get("math-7"))
	require.Nil(t, store.Get("nope"))
}

func TestLoadDirMissingDirErrors(t *testing.T) {
	store := NewStore(testLogger())
	require.Error(t, store.LoadDir(filepath.Join(t.TempDir(), "absent")))
}

func TestAddReplacesByID(t *testing.T) {
	store := NewStore(testLogger())
	store.Add(&CourseConfig{ID: "math-7", Name: "old"})
	store.Add(&CourseConfig{ID: "math-7", Name: "new"})
	store.Add(&CourseConfig{ID: "art"})

	require.Len(t, store.All(), 2)
	require.Equal(t, "new", store.Get("math-7").Name)
	require.Equal(t, "art", store.All()[0].ID, "ordered by id")
}

func TestMatchSubject(t *testing.T) {
	store := NewStore(testLogger())
	store.Add(&CourseConfig{ID: "math-7", SubjectHints: []string{"math", "algebra"}})
	store.Add(&CourseConfig{ID: "typing", SubjectHints: []string{"typing"}})

	require.Equal(t, "math-7", store.MatchSubject("Math Grade 7"))
	require.Equal(t, "math-7", store.MatchSubject("  PRE-ALGEBRA "))
	require.Equal(t, "typing", store.MatchSubject("Typing Practice"))
	require.Equal(t, "", store.MatchSubject("History"))
	require.Equal(t, "", store.MatchSubject(""))
}

func TestInferCategory(t *testing.T) {
	cfg := &CourseConfig{
		CategoryHints: []CategoryHint{{Contains: "quiz", Key: "speed_test"}},
	}

	require.Equal(t, "worksheet", InferCategory("Fractions Worksheet 3", nil))
	require.Equal(t, "topic_test", InferCategory("Unit 4 Topic Test", nil))
	require.Equal(t, "speed_test", InferCategory("Friday Quiz", cfg), "config hints win over the built-ins")
	require.Equal(t, "quiz", InferCategory("Friday Quiz", nil))
	require.Equal(t, "", InferCategory("Mystery Task", nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}
