package models

import (
	"encoding/json"
)

// Category represents a named grouping of questions
type Category struct {
	ID   uint   `json:"id" gorm:"primaryKey" yaml:"id"`
	Type string `json:"type" gorm:"column:type" yaml:"type"`
}

// TableName keeps the table name stable across drivers
func (Category) TableName() string {
	return "categories"
}

// Question represents a trivia prompt. Category holds the id of a Category
// as text and is not enforced as a foreign key.
type Question struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	Question   string `json:"question" gorm:"column:question"`
	Answer     string `json:"answer" gorm:"column:answer"`
	Category   string `json:"category" gorm:"column:category;index"`
	Difficulty int    `json:"difficulty" gorm:"column:difficulty"`
}

// TableName keeps the table name stable across drivers
func (Question) TableName() string {
	return "questions"
}

// CreateQuestionRequest carries the raw values of a new question. The fields
// are kept raw so that presence can be checked independently of type.
type CreateQuestionRequest struct {
	Question   json.RawMessage `json:"question" validate:"required"`
	Answer     json.RawMessage `json:"answer" validate:"required"`
	Difficulty json.RawMessage `json:"difficulty" validate:"required"`
	Category   json.RawMessage `json:"category" validate:"required"`
}

// SearchRequest is the body of a question search
type SearchRequest struct {
	SearchTerm json.RawMessage `json:"searchTerm"`
}

// QuizRequest is the body of a quiz round
type QuizRequest struct {
	QuizCategory      json.RawMessage `json:"quiz_category" validate:"required"`
	PreviousQuestions json.RawMessage `json:"previous_questions" validate:"required"`
}

// QuizCategory selects the pool a quiz question is drawn from
type QuizCategory struct {
	Type *string        `json:"type"`
	ID   json.RawMessage `json:"id"`
}

// AnswerRequest submits an answer for a quiz question
type AnswerRequest struct {
	QuestionID *uint   `json:"question_id" validate:"required"`
	Answer     *string `json:"answer" validate:"required"`
}

// QuestionPage is one page of an ordered question selection
type QuestionPage struct {
	Questions []Question
	// Total is the size of the selection before pagination
	Total int
	// Categories is only filled by the full question listing
	Categories []Category
}

// CategoryPage is one page of the questions filed under a category
type CategoryPage struct {
	Questions       []Question
	CurrentCategory int
}

// DeleteResult describes the state after a question was removed
type DeleteResult struct {
	Deleted   uint
	Questions []Question
	Remaining int64
}

// CreateResult describes the state after a question was added
type CreateResult struct {
	Created   uint
	Questions []Question
	Total     int64
}

// AnswerResult is the outcome of an answer check
type AnswerResult struct {
	QuestionID uint   `json:"question_id"`
	Correct    bool   `json:"correct"`
	Answer     string `json:"answer"`
}

// QuestionEvent is emitted when the question set changes
type QuestionEvent struct {
	Type     string    `json:"type"`
	Question *Question `json:"question"`
}

const (
	EventQuestionCreated = "question.created"
	EventQuestionDeleted = "question.deleted"
)
