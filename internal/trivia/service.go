// Package trivia implements the question and quiz operations of the trivia API
package trivia

import (
	"context"
	"math/rand"
	"strconv"

	"github.com/Aidin1998/trivia/common/dbutil"
	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/Aidin1998/trivia/pkg/metrics"
	"github.com/Aidin1998/trivia/pkg/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// categoryPathOffset is added to the category id of a category listing
// before matching. Clients address categories by their zero-based position
// while questions store one-based ids.
const categoryPathOffset = 1

// TriviaService defines the question and quiz operations
type TriviaService interface {
	Categories(ctx context.Context) ([]models.Category, error)
	ListQuestions(ctx context.Context, page int) (*models.QuestionPage, error)
	DeleteQuestion(ctx context.Context, id uint, page int) (*models.DeleteResult, error)
	CreateQuestion(ctx context.Context, req *models.CreateQuestionRequest, page int) (*models.CreateResult, error)
	SearchQuestions(ctx context.Context, req *models.SearchRequest, page int) (*models.QuestionPage, error)
	QuestionsByCategory(ctx context.Context, categoryID int, page int) (*models.CategoryPage, error)
	PlayQuiz(ctx context.Context, req *models.QuizRequest) (*models.Question, error)
	CheckAnswer(ctx context.Context, req *models.AnswerRequest) (*models.AnswerResult, error)
	Ping(ctx context.Context) error
}

// Service implements TriviaService on top of gorm
type Service struct {
	logger    *zap.Logger
	db        *gorm.DB
	cache     CategoryCache
	publisher Publisher
	pick      func(n int) int
}

// Option customises a Service
type Option func(*Service)

// WithCategoryCache serves categories from cache when possible
func WithCategoryCache(cache CategoryCache) Option {
	return func(s *Service) { s.cache = cache }
}

// WithPublisher sends question events to p
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithPicker replaces the random choice of quiz questions. pick returns an
// index in [0, n).
func WithPicker(pick func(n int) int) Option {
	return func(s *Service) { s.pick = pick }
}

// NewService creates a new TriviaService
func NewService(logger *zap.Logger, db *gorm.DB, opts ...Option) *Service {
	svc := &Service{
		logger:    logger,
		db:        db,
		publisher: nopPublisher{},
		pick:      rand.Intn,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Ping checks the database connection
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Categories returns all categories ordered by id
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	if s.cache != nil {
		categories, ok, err := s.cache.Get(ctx)
		switch {
		case err != nil:
			s.logger.Warn("Category cache read failed", zap.Error(err))
		case ok:
			metrics.CategoryCacheLookups.WithLabelValues("hit").Inc()
			return categories, nil
		default:
			metrics.CategoryCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	var categories []models.Category
	if err := s.db.WithContext(ctx).Order("id").Find(&categories).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, categories); err != nil {
			s.logger.Warn("Category cache write failed", zap.Error(err))
		}
	}
	return categories, nil
}

func (s *Service) allQuestions(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	if err := s.db.WithContext(ctx).Order("id").Find(&questions).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	return questions, nil
}

// ListQuestions returns a page of all questions. An empty page, including
// the case of no questions at all, is reported as not found.
func (s *Service) ListQuestions(ctx context.Context, page int) (*models.QuestionPage, error) {
	questions, err := s.allQuestions(ctx)
	if err != nil {
		return nil, err
	}

	current := Paginate(questions, page)
	if len(current) == 0 {
		return nil, errors.NotFound.Explain("no questions on page %d", page)
	}

	categories, err := s.Categories(ctx)
	if err != nil {
		return nil, err
	}

	return &models.QuestionPage{
		Questions:  current,
		Total:      len(questions),
		Categories: categories,
	}, nil
}

// DeleteQuestion removes a question and returns the requested page of the
// remaining ones. A missing question is unprocessable, not a missing route.
func (s *Service) DeleteQuestion(ctx context.Context, id uint, page int) (*models.DeleteResult, error) {
	db := s.db.WithContext(ctx)

	question, err := dbutil.FindQuestion(db, id)
	if errors.Is(err, errors.NotFound) {
		return nil, errors.Unprocessable.Explain("question %d does not exist", id)
	}
	if err != nil {
		return nil, err
	}

	result := db.Delete(&models.Question{}, id)
	if result.Error != nil {
		return nil, dbutil.WrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.Unprocessable.Explain("question %d does not exist", id)
	}
	metrics.QuestionsChanged.WithLabelValues("delete").Inc()
	s.publish(ctx, models.EventQuestionDeleted, question)

	remaining, err := s.allQuestions(ctx)
	if err != nil {
		return nil, err
	}

	return &models.DeleteResult{
		Deleted:   id,
		Questions: Paginate(remaining, page),
		Remaining: int64(len(remaining)),
	}, nil
}

// CreateQuestion stores a new question. All four fields must be present;
// values that cannot be stored are unprocessable. Text is stored exactly as
// submitted.
func (s *Service) CreateQuestion(ctx context.Context, req *models.CreateQuestionRequest, page int) (*models.CreateResult, error) {
	question, err := buildQuestion(req)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Create(question).Error; err != nil {
		return nil, dbutil.WrapError(err)
	}
	metrics.QuestionsChanged.WithLabelValues("create").Inc()
	s.publish(ctx, models.EventQuestionCreated, question)

	questions, err := s.allQuestions(ctx)
	if err != nil {
		return nil, err
	}

	return &models.CreateResult{
		Created:   question.ID,
		Questions: Paginate(questions, page),
		Total:     int64(len(questions)),
	}, nil
}

func buildQuestion(req *models.CreateQuestionRequest) (*models.Question, error) {
	if req == nil {
		return nil, errors.Unprocessable.Explain("request body is required")
	}

	invalid := errors.Unprocessable.Explain("question could not be created")
	failed := false

	text, ok := textValue(req.Question)
	if !ok {
		invalid = invalid.WithField("text", "question", "must be a string")
		failed = true
	}
	answer, ok := textValue(req.Answer)
	if !ok {
		invalid = invalid.WithField("text", "answer", "must be a string")
		failed = true
	}
	difficulty, ok := intValue(req.Difficulty)
	if !ok {
		invalid = invalid.WithField("integer", "difficulty", "must be an integer")
		failed = true
	}
	category, ok := textValue(req.Category)
	if !ok {
		invalid = invalid.WithField("text", "category", "must be a category id")
		failed = true
	}
	if failed {
		return nil, invalid
	}

	return &models.Question{
		Question:   text,
		Answer:     answer,
		Category:   category,
		Difficulty: difficulty,
	}, nil
}

// SearchQuestions pages through the questions whose text contains the
// search term, ignoring case. No matches is a successful empty page.
func (s *Service) SearchQuestions(ctx context.Context, req *models.SearchRequest, page int) (*models.QuestionPage, error) {
	if req == nil || isNull(req.SearchTerm) {
		return nil, errors.NotFound.Explain("searchTerm is required")
	}
	term, ok := textValue(req.SearchTerm)
	if !ok {
		return nil, errors.Invalid.Explain("searchTerm must be a string")
	}

	var matches []models.Question
	err := s.db.WithContext(ctx).
		Where(`LOWER(question) LIKE LOWER(?) ESCAPE '\'`, "%"+escapeLike(term)+"%").
		Order("id").
		Find(&matches).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}

	return &models.QuestionPage{
		Questions: Paginate(matches, page),
		Total:     len(matches),
	}, nil
}

// QuestionsByCategory pages through the questions of a category. The
// category id is shifted by categoryPathOffset before matching.
func (s *Service) QuestionsByCategory(ctx context.Context, categoryID int, page int) (*models.CategoryPage, error) {
	target := categoryID + categoryPathOffset

	var questions []models.Question
	err := s.db.WithContext(ctx).
		Where("category = ?", strconv.Itoa(target)).
		Order("id").
		Find(&questions).Error
	if err != nil {
		return nil, dbutil.WrapError(err)
	}
	if len(questions) == 0 {
		return nil, errors.NotFound.Explain("no questions in category %d", target)
	}

	return &models.CategoryPage{
		Questions:       Paginate(questions, page),
		CurrentCategory: target,
	}, nil
}

func (s *Service) publish(ctx context.Context, eventType string, question *models.Question) {
	event := models.QuestionEvent{Type: eventType, Question: question}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish question event",
			zap.String("type", eventType),
			zap.Uint("question_id", question.ID),
			zap.Error(err))
	}
}
