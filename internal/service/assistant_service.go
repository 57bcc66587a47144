package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/familyflow/familyflow-api/internal/dto"
	"github.com/familyflow/familyflow-api/internal/repository"
	"github.com/familyflow/familyflow-api/pkg/ai"
)

// AssistantService answers parent questions about the household's schoolwork
// and executes the simple actions the model requests: creating students,
// subjects and assignments, completing or deleting assignments.
type AssistantService interface {
	Chat(ctx context.Context, payload dto.AssistantChatRequest) (dto.AssistantChatResponse, error)
}

type assistantService struct {
	model       ai.Assistant
	students    repository.StudentRepository
	subjects    repository.SubjectRepository
	assignments repository.AssignmentRepository
	studentSvc  StudentService
	subjectSvc  SubjectService
	assignSvc   AssignmentService
	completion  CompletionService
	validator   *validator.Validate
	sanitizer   *bluemonday.Policy
	logger      zerolog.Logger
}

// NewAssistantService wires the assistant against the domain services it may
// act through.
func NewAssistantService(
	model ai.Assistant,
	students repository.StudentRepository,
	subjects repository.SubjectRepository,
	assignments repository.AssignmentRepository,
	studentSvc StudentService,
	subjectSvc SubjectService,
	assignSvc AssignmentService,
	completion CompletionService,
	validate *validator.Validate,
	logger zerolog.Logger,
) AssistantService {
	return &assistantService{
		model:       model,
		students:    students,
		subjects:    subjects,
		assignments: assignments,
		studentSvc:  studentSvc,
		subjectSvc:  subjectSvc,
		assignSvc:   assignSvc,
		completion:  completion,
		validator:   validate,
		sanitizer:   bluemonday.StrictPolicy(),
		logger:      logger.With().Str("component", "assistant_service").Logger(),
	}
}

func (s *assistantService) Chat(ctx context.Context, payload dto.AssistantChatRequest) (dto.AssistantChatResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.AssistantChatResponse{}, err
	}

	input, err := s.buildContext(ctx, payload)
	if err != nil {
		return dto.AssistantChatResponse{}, err
	}

	result, err := s.model.Chat(ctx, input)
	if err != nil {
		return dto.AssistantChatResponse{}, fmt.Errorf("assistant chat: %w", err)
	}

	response := dto.AssistantChatResponse{
		Reply: strings.TrimSpace(s.sanitizer.Sanitize(result.Reply)),
	}
	for _, action := range result.Actions {
		outcome := s.execute(ctx, payload.FamilyID, action)
		response.Actions = append(response.Actions, outcome)
	}
	return response, nil
}

func (s *assistantService) buildContext(ctx context.Context, payload dto.AssistantChatRequest) (ai.ChatInput, error) {
	students, err := s.students.List(ctx, payload.FamilyID)
	if err != nil {
		return ai.ChatInput{}, err
	}
	subjects, err := s.subjects.List(ctx, payload.FamilyID)
	if err != nil {
		return ai.ChatInput{}, err
	}

	open := false
	assignments, _, err := s.assignments.List(ctx, repository.AssignmentFilter{
		FamilyID:  payload.FamilyID,
		Completed: &open,
		PageSize:  25,
	})
	if err != nil {
		return ai.ChatInput{}, err
	}

	studentNames := make(map[uint]string, len(students))
	names := make([]string, 0, len(students))
	for _, student := range students {
		studentNames[student.ID] = student.Name
		names = append(names, student.Name)
	}
	subjectNames := make([]string, 0, len(subjects))
	for _, subject := range subjects {
		subjectNames = append(subjectNames, subject.Name)
	}

	var sb strings.Builder
	for _, assignment := range assignments {
		fmt.Fprintf(&sb, "- %s: %q due %s\n", studentNames[assignment.StudentID], assignment.Name, assignment.DueDate)
	}

	history := make([]ai.Turn, 0, len(payload.History))
	for _, turn := range payload.History {
		history = append(history, ai.Turn{Role: turn.Role, Content: turn.Content})
	}

	return ai.ChatInput{
		Message:        payload.Message,
		StudentNames:   names,
		SubjectNames:   subjectNames,
		OpenAssignment: sb.String(),
		History:        history,
	}, nil
}

// execute runs one model-requested action. Failures never abort the chat;
// they come back as a failed action outcome so the parent sees what happened.
func (s *assistantService) execute(ctx context.Context, familyID string, action map[string]interface{}) dto.AssistantActionResult {
	name, _ := action["action"].(string)
	outcome := dto.AssistantActionResult{Action: name}

	err := func() error {
		switch name {
		case "add_student":
			_, err := s.studentSvc.Create(ctx, dto.StudentCreateRequest{
				FamilyID: familyID,
				Name:     stringField(action, "name"),
			})
			return err
		case "add_subject":
			_, err := s.subjectSvc.Create(ctx, dto.SubjectCreateRequest{
				FamilyID: familyID,
				Name:     stringField(action, "name"),
			})
			return err
		case "add_assignment":
			student, err := s.findStudent(ctx, familyID, stringField(action, "student"))
			if err != nil {
				return err
			}
			subject, err := s.findSubject(ctx, familyID, stringField(action, "subject"))
			if err != nil {
				return err
			}
			_, err = s.assignSvc.Create(ctx, dto.AssignmentCreateRequest{
				StudentID: student,
				SubjectID: subject,
				Name:      stringField(action, "name"),
				DueDate:   stringField(action, "due_date"),
			}, nil)
			return err
		case "complete_assignment":
			id, err := s.findAssignment(ctx, familyID, stringField(action, "student"), stringField(action, "name"))
			if err != nil {
				return err
			}
			_, err = s.completion.Complete(ctx, id, dto.CompleteRequest{})
			return err
		case "delete_assignment":
			id, err := s.findAssignment(ctx, familyID, stringField(action, "student"), stringField(action, "name"))
			if err != nil {
				return err
			}
			return s.assignSvc.Delete(ctx, id)
		default:
			return fmt.Errorf("unsupported action %q", name)
		}
	}()

	if err != nil {
		s.logger.Warn().Err(err).Str("action", name).Msg("assistant action failed")
		outcome.Error = err.Error()
		return outcome
	}
	outcome.OK = true
	return outcome
}

func (s *assistantService) findStudent(ctx context.Context, familyID, name string) (uint, error) {
	students, err := s.students.List(ctx, familyID)
	if err != nil {
		return 0, err
	}
	for _, student := range students {
		if strings.EqualFold(student.Name, name) {
			return student.ID, nil
		}
	}
	return 0, ErrStudentNotFound
}

func (s *assistantService) findSubject(ctx context.Context, familyID, name string) (uint, error) {
	subjects, err := s.subjects.List(ctx, familyID)
	if err != nil {
		return 0, err
	}
	for _, subject := range subjects {
		if strings.EqualFold(subject.Name, name) {
			return subject.ID, nil
		}
	}
	return 0, ErrSubjectNotFound
}

func (s *assistantService) findAssignment(ctx context.Context, familyID, studentName, name string) (uint, error) {
	studentID, err := s.findStudent(ctx, familyID, studentName)
	if err != nil {
		return 0, err
	}
	assignments, _, err := s.assignments.List(ctx, repository.AssignmentFilter{
		FamilyID:  familyID,
		StudentID: &studentID,
		Search:    name,
		PageSize:  5,
	})
	if err != nil {
		return 0, err
	}
	for _, assignment := range assignments {
		if strings.EqualFold(assignment.Name, name) {
			return assignment.ID, nil
		}
	}
	if len(assignments) == 1 {
		return assignments[0].ID, nil
	}
	return 0, ErrAssignmentNotFound
}

func stringField(action map[string]interface{}, key string) string {
	value, _ := action[key].(string)
	return strings.TrimSpace(value)
}
