package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"caradvisor/internal/logger"
	"caradvisor/internal/model"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// InterviewService runs the question loop: it extracts fields from each
// answer, merges them into the session profile and plans the next question
type InterviewService struct {
	sessions     *SessionStore
	extractor    *FieldExtractor
	maxQuestions int
	phraser      TextGenerator
	classifier   Classifier
	llmTimeout   time.Duration
	logger       *zap.Logger
}

// InterviewOption configures optional LLM collaborators
type InterviewOption func(*InterviewService)

// WithQuestionPhrasing lets gen reword the planned question using the
// conversation so far
func WithQuestionPhrasing(gen TextGenerator) InterviewOption {
	return func(s *InterviewService) { s.phraser = gen }
}

// WithClassifier consults c for the targeted field when the keyword rules
// find nothing in an answer
func WithClassifier(c Classifier) InterviewOption {
	return func(s *InterviewService) { s.classifier = c }
}

// WithLLMTimeout bounds every phrasing and classifier call
func WithLLMTimeout(d time.Duration) InterviewOption {
	return func(s *InterviewService) { s.llmTimeout = d }
}

// NewInterviewService creates a new interview service
func NewInterviewService(sessions *SessionStore, maxQuestions int, logger *zap.Logger, opts ...InterviewOption) *InterviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &InterviewService{
		sessions:     sessions,
		extractor:    NewFieldExtractor(),
		maxQuestions: maxQuestions,
		llmTimeout:   8 * time.Second,
		logger:       logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a session and returns its first question
func (s *InterviewService) Start(ctx context.Context) (*model.StartInterviewResponse, error) {
	session := newInterviewSession(s.maxQuestions)
	q := s.phrase(ctx, session, session.planner.Question(session.accumulator))
	session.current = q
	s.sessions.Put(session)

	s.logger.Debug("interview started", zap.String("session_id", session.ID))

	return &model.StartInterviewResponse{
		SessionID: session.ID,
		Question:  q,
	}, nil
}

// Answer records an answer to the current question and returns the next
// question, or Done once the profile is complete
func (s *InterviewService) Answer(ctx context.Context, sessionID, answer string) (*model.AnswerResponse, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if session.planner.Done() {
		return nil, ErrInterviewDone
	}

	state := session.planner.State()
	target := session.planner.TargetField()
	partial := s.extractor.Extract(answer, state)

	if s.classifier != nil && !partial.Has(target) {
		s.classify(ctx, session, target, answer, partial)
	}

	changed := session.accumulator.Merge(partial, state, s.extractor.IsCorrection(answer))
	session.accumulator.RecordAnswer()
	session.history = append(session.history, model.Turn{
		Question:  *session.current,
		Answer:    answer,
		Extracted: partial.Fields(),
	})

	next := session.planner.Advance(session.accumulator)
	s.logger.Debug("interview transition",
		zap.String("session_id", session.ID),
		zap.String("from", string(state)),
		zap.String("to", string(next)),
		zap.String("answer", logger.Truncate(answer, 80)),
		zap.Any("extracted", partial.Fields()),
		zap.Any("changed", changed),
	)

	resp := &model.AnswerResponse{
		SessionID: session.ID,
		Profile:   session.accumulator.Profile(),
		Extracted: partial.Fields(),
	}
	if session.planner.Done() {
		session.current = nil
		resp.Done = true
	} else {
		session.current = s.phrase(ctx, session, session.planner.Question(session.accumulator))
		resp.Question = session.current
	}

	s.sessions.Put(session)
	return resp, nil
}

// Status returns a snapshot of a session
func (s *InterviewService) Status(sessionID string) (*model.InterviewStatus, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	history := make([]model.Turn, len(session.history))
	copy(history, session.history)

	return &model.InterviewStatus{
		SessionID: session.ID,
		State:     string(session.planner.State()),
		Asked:     session.accumulator.Answered(),
		Done:      session.planner.Done(),
		Profile:   session.accumulator.Profile(),
		History:   history,
	}, nil
}

// CompletedProfile returns the profile and transcript of a finished
// interview
func (s *InterviewService) CompletedProfile(sessionID string) (*model.Profile, []model.Turn, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	if !session.planner.Done() {
		return nil, nil, ErrInterviewNotDone
	}
	history := make([]model.Turn, len(session.history))
	copy(history, session.history)
	return session.accumulator.Profile(), history, nil
}

// Finish ends an interview early and keeps what was gathered
func (s *InterviewService) Finish(sessionID string) (*model.Profile, error) {
	session, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()

	session.planner.Finish()
	session.current = nil
	s.sessions.Put(session)
	return session.accumulator.Profile(), nil
}

// classify asks the classifier for the targeted field and copies a valid
// result into partial. Failures only cost the hint.
func (s *InterviewService) classify(ctx context.Context, session *InterviewSession, field model.Field, answer string, partial *model.Profile) {
	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	result, err := s.classifier.Classify(ctx, session.current.Text, answer, field)
	if err != nil {
		s.logger.Warn("classifier failed", zap.String("field", string(field)), zap.Error(err))
		return
	}
	hint := result.Only(field)
	if err := hint.Validate(); err != nil {
		s.logger.Warn("classifier returned invalid value", zap.String("field", string(field)), zap.Error(err))
		return
	}
	overlayField(partial, hint, field)
}

func overlayField(dst, src *model.Profile, f model.Field) {
	switch f {
	case model.FieldBudget:
		dst.BudgetMin, dst.BudgetMax = src.BudgetMin, src.BudgetMax
	case model.FieldFamilySize:
		dst.FamilySize = src.FamilySize
	case model.FieldCondition:
		dst.Condition = src.Condition
	case model.FieldBodyType:
		dst.BodyType = src.BodyType
	case model.FieldDrivingEnvironment:
		dst.DrivingEnvironment = src.DrivingEnvironment
	}
}

// phrase rewords q with the phrasing generator. The canned wording is kept
// on any failure.
func (s *InterviewService) phrase(ctx context.Context, session *InterviewSession, q *model.Question) *model.Question {
	if s.phraser == nil || q == nil {
		return q
	}

	ctx, cancel := context.WithTimeout(ctx, s.llmTimeout)
	defer cancel()

	text, err := s.phraser.Generate(ctx, questionPrompt(session.history, q))
	if err != nil {
		s.logger.Warn("question phrasing failed, using canned question",
			zap.String("provider", s.phraser.Name()), zap.Error(eris.Cause(err)))
		return q
	}
	text = strings.Trim(strings.TrimSpace(text), `"`)
	if text == "" || strings.EqualFold(text, "DONE") {
		return q
	}

	phrased := *q
	phrased.Text = text
	return &phrased
}

func questionPrompt(history []model.Turn, q *model.Question) string {
	var convo strings.Builder
	if len(history) == 0 {
		convo.WriteString("(no previous questions asked yet)\n")
	}
	for i, turn := range history {
		fmt.Fprintf(&convo, "Q%d: %s\nA%d: %s\n", i+1, turn.Question.Text, i+1, turn.Answer)
	}

	return fmt.Sprintf(`You are a helpful car-purchase advisor in Singapore, interviewing a buyer before recommending a new or used car.

Conversation so far:
%s
The next thing to find out is: %s
A plain version of the question is: %s

Rewrite that question as ONE short, friendly question that fits the conversation.
Do not ask about anything else. Return ONLY the question text.`,
		convo.String(), strings.ReplaceAll(string(q.Field), "_", " "), q.Text)
}
