package assessmentclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lovematch/internal/models/request_models"
	"lovematch/internal/models/response_models"
	"lovematch/pkg/utils"
)

func testConfig() *request_models.AssessmentConfig {
	return &request_models.AssessmentConfig{
		Mode:            request_models.ModeIndividual,
		ParticipantInfo: request_models.ParticipantInfo{Name: "Alex", Age: 30},
	}
}

// recordingServer answers each call with the next status in statuses and
// records when each call arrived.
type recordingServer struct {
	mu       sync.Mutex
	statuses []int
	arrivals []time.Time
}

func (rs *recordingServer) handler(success any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rs.mu.Lock()
		i := len(rs.arrivals)
		rs.arrivals = append(rs.arrivals, time.Now())
		status := http.StatusOK
		if i < len(rs.statuses) {
			status = rs.statuses[i]
		}
		rs.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_ = json.NewEncoder(w).Encode(utils.APIResponse{Status: "error", Code: status, Error: "nope", TraceID: "t-1"})
			return
		}
		_ = json.NewEncoder(w).Encode(success)
	}
}

func (rs *recordingServer) calls() []time.Time {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]time.Time(nil), rs.arrivals...)
}

func questionsPayload() response_models.QuestionsResponse {
	return response_models.QuestionsResponse{
		Questions:    []response_models.Question{{ID: 1, Text: "q", Category: response_models.CategoryValues}},
		SessionToken: "tok",
	}
}

func TestGenerateQuestions_RetriesWithFixedDelay(t *testing.T) {
	rs := &recordingServer{statuses: []int{500, 504, 200}}
	srv := httptest.NewServer(rs.handler(questionsPayload()))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, 50*time.Millisecond))
	resp, err := c.GenerateQuestions(context.Background(), testConfig())
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.SessionToken)

	calls := rs.calls()
	require.Len(t, calls, 3)
	for i := 1; i < len(calls); i++ {
		assert.GreaterOrEqual(t, calls[i].Sub(calls[i-1]), 50*time.Millisecond)
	}
}

func TestGenerateQuestions_StopsAfterThreeAttempts(t *testing.T) {
	rs := &recordingServer{statuses: []int{500, 500, 500, 500}}
	srv := httptest.NewServer(rs.handler(questionsPayload()))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := c.GenerateQuestions(context.Background(), testConfig())

	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
	assert.Len(t, rs.calls(), 3)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "nope", apiErr.Message)
	assert.Equal(t, "t-1", apiErr.TraceID)
}

func TestGenerateQuestions_DoesNotRetryBadRequest(t *testing.T) {
	rs := &recordingServer{statuses: []int{400}}
	srv := httptest.NewServer(rs.handler(questionsPayload()))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := c.GenerateQuestions(context.Background(), testConfig())

	assert.ErrorIs(t, err, utils.ErrBadRequest)
	assert.Len(t, rs.calls(), 1)
}

func TestGenerateQuestions_CancelledDuringDelay(t *testing.T) {
	rs := &recordingServer{statuses: []int{500, 500, 500}}
	srv := httptest.NewServer(rs.handler(questionsPayload()))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, 10*time.Second))
	start := time.Now()
	_, err := c.GenerateQuestions(ctx, testConfig())

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Len(t, rs.calls(), 1)
}

func TestAnalyze_SingleAttempt(t *testing.T) {
	rs := &recordingServer{statuses: []int{504}}
	srv := httptest.NewServer(rs.handler(response_models.AnalysisResult{}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := c.Analyze(context.Background(), &request_models.AnalyzeRequest{
		Config:  testConfig(),
		Answers: request_models.AnswerSet{1: 2},
	})

	assert.ErrorIs(t, err, utils.ErrTimeout)
	assert.Len(t, rs.calls(), 1)
}

func TestAnalyze_SendsRequestBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(response_models.AnalysisResult{
			Score: 80, CompatibilityLabel: "Great", Suggestions: []string{"a", "b", "c"}, Narrative: "## ok",
		})
	}))
	defer srv.Close()

	c := New(srv.URL+"/", WithHTTPClient(srv.Client()))
	result, err := c.Analyze(context.Background(), &request_models.AnalyzeRequest{
		Config:       testConfig(),
		Answers:      request_models.AnswerSet{3: 4},
		SessionToken: "tok",
	})
	require.NoError(t, err)

	assert.Equal(t, 80, result.Score)
	assert.Equal(t, "## ok", result.Narrative)
	assert.Equal(t, map[string]any{"3": float64(4)}, got["answers"])
	assert.Equal(t, "tok", got["sessionToken"])
}

func TestFollowUp_SendsHistoryAndQuestion(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/followup", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(response_models.FollowUpResponse{Answer: "Plan a weekly check-in."})
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	resp, err := c.FollowUp(context.Background(), &request_models.FollowUpRequest{
		Config:   testConfig(),
		History:  []request_models.FollowUpTurn{{Role: "user", Content: "hi"}, {Role: "assistant", Content: "hello"}},
		Question: "How do we argue less?",
	})
	require.NoError(t, err)

	assert.Equal(t, "Plan a weekly check-in.", resp.Answer)
	assert.Equal(t, "How do we argue less?", got["question"])
	assert.Len(t, got["history"], 2)
}

func TestFollowUp_BadRequestIsNotRetried(t *testing.T) {
	rs := &recordingServer{statuses: []int{400, 400}}
	srv := httptest.NewServer(rs.handler(response_models.FollowUpResponse{}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()), WithRetry(3, time.Millisecond))
	_, err := c.FollowUp(context.Background(), &request_models.FollowUpRequest{Config: testConfig()})

	assert.ErrorIs(t, err, utils.ErrBadRequest)
	assert.Len(t, rs.calls(), 1)
}

func TestOptions_DecodesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/options", r.URL.Path)
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"options":[{"type":"basic","title":"Quick","features":["6 questions"]},{"type":"advanced","title":"Deep"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	catalog, err := c.Options(context.Background())
	require.NoError(t, err)

	require.Len(t, catalog.Options, 2)
	assert.Equal(t, "basic", catalog.Options[0].Type)
	assert.Equal(t, []string{"6 questions"}, catalog.Options[0].Features)
	assert.Equal(t, "Deep", catalog.Options[1].Title)
}

func TestOptions_ServerError(t *testing.T) {
	rs := &recordingServer{statuses: []int{503}}
	srv := httptest.NewServer(rs.handler(nil))
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))
	_, err := c.Options(context.Background())

	assert.ErrorIs(t, err, utils.ErrUpstreamUnavailable)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusServiceUnavailable, apiErr.StatusCode)
}
