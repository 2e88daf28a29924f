package assessmentclient

import (
	"context"
	"errors"
	"fmt"

	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
)

type State int

const (
	CollectingProfile State = iota
	GeneratingQuestions
	Answering
	Analyzing
	ResultReady
	Failed
)

func (s State) String() string {
	switch s {
	case CollectingProfile:
		return "collecting_profile"
	case GeneratingQuestions:
		return "generating_questions"
	case Answering:
		return "answering"
	case Analyzing:
		return "analyzing"
	case ResultReady:
		return "result_ready"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

var ErrInvalidTransition = errors.New("invalid session transition")

// API is the subset of *Client a Session drives.
type API interface {
	GenerateQuestions(ctx context.Context, cfg *request_models.AssessmentConfig) (*response_models.QuestionsResponse, error)
	Analyze(ctx context.Context, req *request_models.AnalyzeRequest) (*response_models.AnalysisResult, error)
}

// Session walks one assessment through the wizard:
// CollectingProfile -> GeneratingQuestions -> Answering -> Analyzing ->
// ResultReady, with any failure ending in Failed until Restart.
// A Session is not safe for concurrent use.
type Session struct {
	api   API
	state State

	config    *request_models.AssessmentConfig
	questions []response_models.Question
	token     string
	answers   request_models.AnswerSet
	result    *response_models.AnalysisResult
	err       error
}

func NewSession(api API) *Session {
	return &Session{api: api, state: CollectingProfile}
}

func (s *Session) State() State { return s.state }

func (s *Session) Questions() []response_models.Question { return s.questions }

func (s *Session) Result() *response_models.AnalysisResult { return s.result }

func (s *Session) Config() *request_models.AssessmentConfig { return s.config }

// Err returns the failure that moved the session to Failed.
func (s *Session) Err() error { return s.err }

// SetProfile records the profile. It may be called repeatedly while
// collecting.
func (s *Session) SetProfile(cfg *request_models.AssessmentConfig) error {
	if err := s.expect(CollectingProfile); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.config = cfg
	return nil
}

// Start fetches the questions for the recorded profile.
func (s *Session) Start(ctx context.Context) error {
	if err := s.expect(CollectingProfile); err != nil {
		return err
	}
	if s.config == nil {
		return fmt.Errorf("%w: no profile set", ErrInvalidTransition)
	}

	s.state = GeneratingQuestions
	resp, err := s.api.GenerateQuestions(ctx, s.config)
	if err != nil {
		return s.fail(err)
	}

	s.questions = presentable(resp.Questions, s.config.IsPaired())
	if len(s.questions) == 0 {
		return s.fail(errors.New("no questions to present"))
	}
	s.token = resp.SessionToken
	s.answers = make(request_models.AnswerSet, len(s.questions))
	s.state = Answering
	return nil
}

// Answer records or replaces the answer to a presented question.
func (s *Session) Answer(questionID, value int) error {
	if err := s.expect(Answering); err != nil {
		return err
	}
	if !s.presented(questionID) {
		return fmt.Errorf("question %d was not presented", questionID)
	}
	if value < 1 || value > 4 {
		return fmt.Errorf("answer %d is out of range 1..4", value)
	}
	s.answers[questionID] = value
	return nil
}

// Progress reports how many presented questions have an answer.
func (s *Session) Progress() (answered, total int) {
	return len(s.answers), len(s.questions)
}

// Finish submits the answers once every presented question is answered.
func (s *Session) Finish(ctx context.Context) error {
	if err := s.expect(Answering); err != nil {
		return err
	}
	if answered, total := s.Progress(); answered < total {
		return fmt.Errorf("%d of %d questions answered", answered, total)
	}

	s.state = Analyzing
	result, err := s.api.Analyze(ctx, &request_models.AnalyzeRequest{
		Config:       s.config,
		Answers:      s.answers,
		SessionToken: s.token,
	})
	if err != nil {
		return s.fail(err)
	}
	s.result = result
	s.state = ResultReady
	return nil
}

// Restart discards everything and returns to CollectingProfile.
func (s *Session) Restart() {
	*s = Session{api: s.api, state: CollectingProfile}
}

func (s *Session) expect(want State) error {
	if s.state != want {
		return fmt.Errorf("%w: in %s, want %s", ErrInvalidTransition, s.state, want)
	}
	return nil
}

func (s *Session) fail(err error) error {
	s.err = err
	s.state = Failed
	return err
}

func (s *Session) presented(id int) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// presentable drops paired-only questions outside paired mode.
func presentable(questions []response_models.Question, paired bool) []response_models.Question {
	if paired {
		return questions
	}
	out := make([]response_models.Question, 0, len(questions))
	for _, q := range questions {
		if !q.PairedOnly {
			out = append(out, q)
		}
	}
	return out
}
