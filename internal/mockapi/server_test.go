package mockapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/letsssgooo/quizctl/internal/domain/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, opts ...Option) (*Engine, *httptest.Server) {
	t.Helper()

	engine := NewEngine()
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	srv := httptest.NewServer(NewServer(engine, opts...).Handler())
	t.Cleanup(srv.Close)

	return engine, srv
}

func doJSON(t *testing.T, method, url, token, body string) (int, map[string]any) {
	t.Helper()

	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	if len(data) > 0 && data[0] == '{' {
		require.NoError(t, json.Unmarshal(data, &out))
	}

	return resp.StatusCode, out
}

func TestServer_Unauthorized(t *testing.T) {
	_, srv := newTestServer(t, WithToken("secret"))

	status, body := doJSON(t, http.MethodGet, srv.URL+"/quizzes", "", "")
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "Unauthorized", body["error"])

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/quizzes", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/quizzes", "secret", "")
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, status)
}

func TestServer_CreateQuizValidation(t *testing.T) {
	_, srv := newTestServer(t)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/quizzes", "", `{"title":"","description":"d","timeLimitSeconds":900}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Title is required")

	status, body = doJSON(t, http.MethodPost, srv.URL+"/quizzes", "", `{"title":"t","description":"d","timeLimitSeconds":900}`)
	assert.Equal(t, http.StatusCreated, status)
	assert.EqualValues(t, 1, body["id"])
	assert.EqualValues(t, 900, body["timeLimitSeconds"])
}

func TestServer_QuestionLifecycle(t *testing.T) {
	engine, srv := newTestServer(t)
	quiz := engine.CreateQuiz(models.QuizInput{Title: "t", Description: "d", TimeLimitSeconds: 900})

	status, body := doJSON(t, http.MethodPost, srv.URL+"/quizzes/1/questions", "",
		`{"type":"mcq","prompt":"Pick B","options":["A","B"],"correctAnswer":1}`)
	require.Equal(t, http.StatusCreated, status)
	questionID := int64(body["id"].(float64))

	status, body = doJSON(t, http.MethodPost, srv.URL+"/quizzes/1/questions", "",
		`{"type":"mcq","prompt":"Pick","options":["A"],"correctAnswer":0}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, body["error"], "Enter at least 2 options")

	status, body = doJSON(t, http.MethodPatch, srv.URL+"/questions/"+itoa(questionID), "",
		`{"type":"short","prompt":"Capital of France?","options":["stale"],"correctAnswer":"Paris"}`)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "short", body["type"])
	assert.Nil(t, body["options"])

	got, err := engine.GetQuiz(quiz.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/questions/"+itoa(questionID), "", "")
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = doJSON(t, http.MethodDelete, srv.URL+"/questions/"+itoa(questionID), "", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, body = doJSON(t, http.MethodGet, srv.URL+"/quizzes/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "invalid id", body["error"])
}

func TestServer_AttemptFlow(t *testing.T) {
	engine, srv := newTestServer(t)
	quiz, questions := seedQuiz(t, engine)

	status, body := doJSON(t, http.MethodPost, srv.URL+"/attempts", "", `{"quizId":`+itoa(quiz.ID)+`}`)
	require.Equal(t, http.StatusCreated, status)
	attemptID := itoa(int64(body["id"].(float64)))

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/attempts/"+attemptID+"/answer", "",
		`{"questionId":`+itoa(questions[0].ID)+`,"value":1}`)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/attempts/"+attemptID+"/events", "", `{"event":"Ctrl+V pressed"}`)
	assert.Equal(t, http.StatusCreated, status)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/attempts/"+attemptID+"/submit", "", "")
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["score"])
	assert.Len(t, body["details"], 3)

	status, body = doJSON(t, http.MethodPost, srv.URL+"/attempts/"+attemptID+"/submit", "", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Contains(t, body["error"], "already submitted")

	status, _ = doJSON(t, http.MethodPost, srv.URL+"/attempts", "", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)

	resp, err := http.Get(srv.URL + "/quizzes/" + itoa(quiz.ID) + "/results.csv")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
}

func TestServer_CORS(t *testing.T) {
	_, srv := newTestServer(t, WithAllowedOrigins([]string{"http://localhost:5173"}))

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/quizzes", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:5173", resp.Header.Get("Access-Control-Allow-Origin"))
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
