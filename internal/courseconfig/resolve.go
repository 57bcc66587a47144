package courseconfig

import "strings"

// defaultCategoryRules is the built-in assignment-name vocabulary, checked in
// order; the first match wins. Per-config hints run before these so skill
// courses can remap generic names.
var defaultCategoryRules = []CategoryHint{
	{Contains: "reading", Key: "reading"},
	{Contains: "lecture", Key: "lecture"},
	{Contains: "problem set", Key: "problem_set"},
	{Contains: "problem-set", Key: "problem_set"},
	{Contains: "worksheet", Key: "worksheet"},
	{Contains: "topic test", Key: "topic_test"},
	{Contains: "topic-test", Key: "topic_test"},
	{Contains: "quiz", Key: "quiz"},
}

// MatchSubject returns the id of the first config whose subject hints match
// the subject name. This is a deliberate best-effort heuristic: an unmatched
// subject simply resolves to no configuration.
func (s *Store) MatchSubject(subjectName string) string {
	name := strings.ToLower(strings.TrimSpace(subjectName))
	if name == "" {
		return ""
	}
	for _, cfg := range s.ordered {
		for _, hint := range cfg.SubjectHints {
			hint = strings.ToLower(strings.TrimSpace(hint))
			if hint != "" && strings.Contains(name, hint) {
				return cfg.ID
			}
		}
	}
	return ""
}

// InferCategory maps an assignment name onto a category key. No match yields
// an empty key, which the points calculator treats as worth zero points.
func InferCategory(assignmentName string, cfg *CourseConfig) string {
	name := strings.ToLower(strings.TrimSpace(assignmentName))
	if name == "" {
		return ""
	}
	if cfg != nil {
		for _, hint := range cfg.CategoryHints {
			contains := strings.ToLower(strings.TrimSpace(hint.Contains))
			if contains != "" && strings.Contains(name, contains) {
				return hint.Key
			}
		}
	}
	for _, rule := range defaultCategoryRules {
		if strings.Contains(name, rule.Contains) {
			return rule.Key
		}
	}
	return ""
}
