package mockapi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/letsssgooo/quizctl/internal/domain/models"
	"github.com/letsssgooo/quizctl/internal/quiz"
)

// Server отдает REST API квизов поверх Engine.
type Server struct {
	engine         *Engine
	token          string
	allowedOrigins []string
	log            *slog.Logger
	router         *gin.Engine
}

// Option настраивает Server.
type Option func(s *Server)

// WithToken включает проверку Bearer токена.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = token
	}
}

// WithAllowedOrigins разрешает CORS-запросы с указанных адресов.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger задает логгер запросов.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		s.log = log
	}
}

// NewServer собирает роутер gin для engine.
func NewServer(engine *Engine, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := gin.New()
	r.Use(s.requestLogger(), gin.Recovery())

	if len(s.allowedOrigins) > 0 {
		config := cors.DefaultConfig()
		config.AllowOrigins = s.allowedOrigins
		config.AllowHeaders = append(config.AllowHeaders, "Authorization", "X-Request-ID")
		r.Use(cors.New(config))
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP"})
	})

	api := r.Group("/", s.auth())
	{
		api.GET("/quizzes", s.listQuizzes)
		api.POST("/quizzes", s.createQuiz)
		api.GET("/quizzes/:id", s.getQuiz)
		api.PATCH("/quizzes/:id", s.updateQuiz)
		api.POST("/quizzes/:id/questions", s.createQuestion)
		api.GET("/quizzes/:id/results.csv", s.exportResults)
		api.PATCH("/questions/:id", s.updateQuestion)
		api.DELETE("/questions/:id", s.deleteQuestion)
		api.POST("/attempts", s.startAttempt)
		api.POST("/attempts/:id/answer", s.answer)
		api.POST("/attempts/:id/submit", s.submit)
		api.POST("/attempts/:id/events", s.recordEvent)
		api.GET("/attempts/:id/events", s.listEvents)
	}

	s.router = r

	return s
}

// Handler возвращает http.Handler сервера.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
			"latency", time.Since(startTime),
			"request_id", c.GetHeader("X-Request-ID"),
		}

		switch {
		case status >= http.StatusInternalServerError:
			s.log.Error("request failed", attrs...)
		case status >= http.StatusBadRequest:
			s.log.Warn("client error", attrs...)
		default:
			s.log.Info("request", attrs...)
		}
	}
}

func (s *Server) auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.token == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != s.token {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}

		c.Next()
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ErrAttemptSubmitted):
		status = http.StatusConflict
	case errors.Is(err, ErrForeignQuestion), errors.Is(err, ErrInvalidAnswer), errors.Is(err, quiz.ErrValidation):
		status = http.StatusBadRequest
	}

	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) listQuizzes(c *gin.Context) {
	c.JSON(http.StatusOK, s.engine.ListQuizzes())
}

func (s *Server) createQuiz(c *gin.Context) {
	var in models.QuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := quiz.ValidateQuiz(in); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, s.engine.CreateQuiz(in))
}

func (s *Server) getQuiz(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	q, err := s.engine.GetQuiz(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

func (s *Server) updateQuiz(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var in models.QuizInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := quiz.ValidateQuiz(in); err != nil {
		writeError(c, err)
		return
	}

	q, err := s.engine.UpdateQuiz(id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, q)
}

func (s *Server) exportResults(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	data, err := s.engine.ExportCSV(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) createQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	in, ok := bindQuestion(c)
	if !ok {
		return
	}

	question, err := s.engine.CreateQuestion(id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, question)
}

func (s *Server) updateQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	in, ok := bindQuestion(c)
	if !ok {
		return
	}

	question, err := s.engine.UpdateQuestion(id, in)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, question)
}

func bindQuestion(c *gin.Context) (models.QuestionInput, bool) {
	var in models.QuestionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return in, false
	}

	in = quiz.NormalizeQuestion(in)
	if err := quiz.ValidateQuestion(in); err != nil {
		writeError(c, err)
		return in, false
	}

	return in, true
}

func (s *Server) deleteQuestion(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := s.engine.DeleteQuestion(id); err != nil {
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) startAttempt(c *gin.Context) {
	var req models.StartAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := quiz.Validator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quizId is required"})
		return
	}

	attempt, err := s.engine.StartAttempt(req.QuizID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, attempt)
}

func (s *Server) answer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := quiz.Validator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questionId is required"})
		return
	}

	if err := s.engine.SubmitAnswer(id, req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"questionId": req.QuestionID, "accepted": true})
}

func (s *Server) submit(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	result, err := s.engine.Submit(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) recordEvent(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req models.EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := quiz.Validator().Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "event is required"})
		return
	}

	ev, err := s.engine.RecordEvent(id, req.Event)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ev)
}

func (s *Server) listEvents(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := s.engine.Attempt(id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, s.engine.Events(id))
}
