// Package handlers translates HTTP requests into trivia service calls
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Aidin1998/trivia/api/responses"
	"github.com/Aidin1998/trivia/common/apiutil"
	"github.com/Aidin1998/trivia/internal/trivia"
	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TriviaHandler serves the question, category and quiz endpoints
type TriviaHandler struct {
	logger    *zap.Logger
	svc       trivia.TriviaService
	validator *apiutil.Validator
}

func NewTriviaHandler(logger *zap.Logger, svc trivia.TriviaService) *TriviaHandler {
	return &TriviaHandler{
		logger:    logger,
		svc:       svc,
		validator: apiutil.NewValidator(),
	}
}

func page(c *gin.Context) int {
	return trivia.ParsePage(c.Query("page"))
}

// pathID reads a non-negative integer path parameter. Anything else does
// not name a resource.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		apiutil.WriteErrorResponse(c, http.StatusNotFound)
		return 0, false
	}
	return id, true
}

// bind decodes the JSON body. Unreadable bodies are reported with kind.
func (h *TriviaHandler) bind(c *gin.Context, req any, kind *errors.Error) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		apiutil.AbortWithError(c, kind.Explain("malformed JSON body").Wrap(err))
		return false
	}
	return true
}

func (h *TriviaHandler) fail(c *gin.Context, err error) {
	if errors.HTTPStatus(err) >= http.StatusInternalServerError {
		h.logger.Error("Trivia request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err))
	}
	apiutil.AbortWithError(c, err)
}

// GetCategories handles GET /categories
func (h *TriviaHandler) GetCategories(c *gin.Context) {
	categories, err := h.svc.Categories(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Categories(categories))
}

// GetQuestions handles GET /questions
func (h *TriviaHandler) GetQuestions(c *gin.Context) {
	result, err := h.svc.ListQuestions(c.Request.Context(), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Questions(result))
}

// DeleteQuestion handles DELETE /questions/:id
func (h *TriviaHandler) DeleteQuestion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.DeleteQuestion(c.Request.Context(), uint(id), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Deleted(result))
}

// CreateQuestion handles POST /questions
func (h *TriviaHandler) CreateQuestion(c *gin.Context) {
	var req models.CreateQuestionRequest
	if !h.bind(c, &req, errors.Invalid) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(c, err)
		return
	}
	result, err := h.svc.CreateQuestion(c.Request.Context(), &req, page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Created(result))
}

// SearchQuestions handles POST /questions/search
func (h *TriviaHandler) SearchQuestions(c *gin.Context) {
	var req models.SearchRequest
	if !h.bind(c, &req, errors.Invalid) {
		return
	}
	result, err := h.svc.SearchQuestions(c.Request.Context(), &req, page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Search(result))
}

// GetCategoryQuestions handles GET /categories/:id/questions
func (h *TriviaHandler) GetCategoryQuestions(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.svc.QuestionsByCategory(c.Request.Context(), int(id), page(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.CategoryQuestions(result))
}

// PlayQuiz handles POST /quizzes. Every payload problem, including a body
// that is not JSON, is unprocessable.
func (h *TriviaHandler) PlayQuiz(c *gin.Context) {
	var req models.QuizRequest
	if !h.bind(c, &req, errors.Unprocessable) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(c, err)
		return
	}
	question, err := h.svc.PlayQuiz(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Quiz(question))
}

// CheckAnswer handles POST /quizzes/answers
func (h *TriviaHandler) CheckAnswer(c *gin.Context) {
	var req models.AnswerRequest
	if !h.bind(c, &req, errors.Invalid) {
		return
	}
	if err := h.validator.Validate(&req); err != nil {
		h.fail(c, err)
		return
	}
	result, err := h.svc.CheckAnswer(c.Request.Context(), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	responses.Success(c, responses.Answer(result))
}

// Health handles GET /health
func (h *TriviaHandler) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		apiutil.WriteErrorResponse(c, http.StatusServiceUnavailable)
		return
	}
	responses.Success(c, responses.HealthResponse{Status: "ok", Time: time.Now().UTC()})
}
