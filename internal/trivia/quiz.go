package trivia

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/Aidin1998/trivia/common/dbutil"
	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/Aidin1998/trivia/pkg/metrics"
	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/agnivade/levenshtein"
)

// AnyCategory is the quiz category type the client sends when the player
// picked all categories
const AnyCategory = "click"

// PlayQuiz draws a random question the player has not seen yet. It returns
// nil without error once the pool is exhausted.
func (s *Service) PlayQuiz(ctx context.Context, req *models.QuizRequest) (*models.Question, error) {
	if req == nil || req.QuizCategory == nil || req.PreviousQuestions == nil {
		return nil, errors.Unprocessable.Explain("quiz_category and previous_questions are required")
	}

	var category models.QuizCategory
	if err := json.Unmarshal(req.QuizCategory, &category); err != nil || isNull(req.QuizCategory) {
		return nil, errors.Unprocessable.Explain("quiz_category must be an object")
	}
	if category.Type == nil {
		return nil, errors.Unprocessable.Explain("quiz_category.type is required")
	}

	previous, ok := idList(req.PreviousQuestions)
	if !ok {
		return nil, errors.Unprocessable.Explain("previous_questions must be a list of question ids")
	}

	query := s.db.WithContext(ctx).Model(&models.Question{})
	if *category.Type != AnyCategory {
		id, ok := textValue(category.ID)
		if !ok {
			return nil, errors.Unprocessable.Explain("quiz_category.id is required")
		}
		query = query.Where("category = ?", id)
	}
	if len(previous) > 0 {
		query = query.Where("id NOT IN ?", previous)
	}

	var eligible []models.Question
	if err := query.Order("id").Find(&eligible).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}

	if len(eligible) == 0 {
		metrics.QuizRounds.WithLabelValues("exhausted").Inc()
		return nil, nil
	}
	metrics.QuizRounds.WithLabelValues("served").Inc()
	question := eligible[s.pick(len(eligible))]
	return &question, nil
}

// CheckAnswer compares a submitted answer with the stored one. Case and
// spacing are ignored and small typos are tolerated on longer answers.
func (s *Service) CheckAnswer(ctx context.Context, req *models.AnswerRequest) (*models.AnswerResult, error) {
	if req == nil || req.QuestionID == nil || req.Answer == nil {
		return nil, errors.Unprocessable.Explain("question_id and answer are required")
	}

	question, err := dbutil.FindQuestion(s.db.WithContext(ctx), *req.QuestionID)
	if err != nil {
		return nil, err
	}

	return &models.AnswerResult{
		QuestionID: question.ID,
		Correct:    answerMatches(question.Answer, *req.Answer),
		Answer:     question.Answer,
	}, nil
}

func normalizeAnswer(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// answerMatches allows one edit per six characters of the expected answer
func answerMatches(expected, given string) bool {
	expected, given = normalizeAnswer(expected), normalizeAnswer(given)
	if given == "" {
		return false
	}
	if expected == given {
		return true
	}
	tolerance := len([]rune(expected)) / 6
	return levenshtein.ComputeDistance(expected, given) <= tolerance
}
