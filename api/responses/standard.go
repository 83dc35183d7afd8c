// Package responses holds the JSON bodies of successful trivia API calls.
// Key names follow what existing trivia clients read, which is why the
// casing differs between endpoints.
package responses

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/gin-gonic/gin"
)

// CategoriesResponse maps category id, as text, to its type
type CategoriesResponse struct {
	Success    bool              `json:"success"`
	Categories map[string]string `json:"categories"`
}

// QuestionsResponse is a page of the full question listing
type QuestionsResponse struct {
	Success         bool              `json:"success"`
	Questions       []models.Question `json:"questions"`
	TotalQuestions  int               `json:"totalQuestions"`
	Categories      []string          `json:"categories"`
	CurrentCategory *int              `json:"currentCategory"`
}

type DeleteResponse struct {
	Success   bool              `json:"success"`
	Deleted   uint              `json:"deleted"`
	Questions []models.Question `json:"questions"`
	// TotalBooks is the number of questions left
	TotalBooks int64 `json:"total_books"`
}

type CreateResponse struct {
	Success        bool              `json:"success"`
	Created        uint              `json:"created"`
	Questions      []models.Question `json:"questions"`
	TotalQuestions int64             `json:"totalQuestions"`
}

// SearchResponse is a page of search matches. TotalQuestions counts every match.
type SearchResponse struct {
	Success         bool              `json:"success"`
	Questions       []models.Question `json:"questions"`
	CurrentCategory *int              `json:"current_category"`
	TotalQuestions  int               `json:"total_questions"`
}

// CategoryQuestionsResponse is a page of a category. TotalQuestions counts
// the questions on the returned page only.
type CategoryQuestionsResponse struct {
	Success         bool              `json:"success"`
	Questions       []models.Question `json:"questions"`
	TotalQuestions  int               `json:"total_questions"`
	CurrentCategory int               `json:"current_category"`
}

// QuizResponse carries the next quiz question, or null when none is left
type QuizResponse struct {
	Success  bool             `json:"success"`
	Question *models.Question `json:"question"`
}

type AnswerResponse struct {
	Success bool `json:"success"`
	models.AnswerResult
}

type HealthResponse struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

// Success writes a 200 response
func Success(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}

// Categories builds the category listing body
func Categories(categories []models.Category) CategoriesResponse {
	byID := make(map[string]string, len(categories))
	for _, category := range categories {
		byID[strconv.FormatUint(uint64(category.ID), 10)] = category.Type
	}
	return CategoriesResponse{Success: true, Categories: byID}
}

// Questions builds the question listing body
func Questions(page *models.QuestionPage) QuestionsResponse {
	types := make([]string, 0, len(page.Categories))
	for _, category := range page.Categories {
		types = append(types, category.Type)
	}
	return QuestionsResponse{
		Success:        true,
		Questions:      page.Questions,
		TotalQuestions: page.Total,
		Categories:     types,
	}
}

func Deleted(result *models.DeleteResult) DeleteResponse {
	return DeleteResponse{
		Success:    true,
		Deleted:    result.Deleted,
		Questions:  result.Questions,
		TotalBooks: result.Remaining,
	}
}

func Created(result *models.CreateResult) CreateResponse {
	return CreateResponse{
		Success:        true,
		Created:        result.Created,
		Questions:      result.Questions,
		TotalQuestions: result.Total,
	}
}

func Search(page *models.QuestionPage) SearchResponse {
	return SearchResponse{
		Success:        true,
		Questions:      page.Questions,
		TotalQuestions: page.Total,
	}
}

func CategoryQuestions(page *models.CategoryPage) CategoryQuestionsResponse {
	return CategoryQuestionsResponse{
		Success:         true,
		Questions:       page.Questions,
		TotalQuestions:  len(page.Questions),
		CurrentCategory: page.CurrentCategory,
	}
}

func Quiz(question *models.Question) QuizResponse {
	return QuizResponse{Success: true, Question: question}
}

func Answer(result *models.AnswerResult) AnswerResponse {
	return AnswerResponse{Success: true, AnswerResult: *result}
}
