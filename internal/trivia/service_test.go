package trivia_test

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"sync"
	"testing"

	"github.com/Aidin1998/trivia/internal/trivia"
	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/Aidin1998/trivia/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []models.QuestionEvent
}

func (p *recordingPublisher) Publish(_ context.Context, event models.QuestionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

type memoryCache struct {
	categories []models.Category
	gets, sets int
}

func (c *memoryCache) Get(context.Context) ([]models.Category, bool, error) {
	c.gets++
	return c.categories, c.categories != nil, nil
}

func (c *memoryCache) Set(_ context.Context, categories []models.Category) error {
	c.sets++
	c.categories = categories
	return nil
}

func setupService(t *testing.T, questions int, opts ...trivia.Option) (*trivia.Service, *gorm.DB, []models.Question) {
	t.Helper()
	db := testutil.NewTestDB(t)
	testutil.SeedCategories(t, db)
	seeded := testutil.SeedQuestions(t, db, questions)
	return trivia.NewService(zaptest.NewLogger(t), db, opts...), db, seeded
}

func raw(v string) json.RawMessage { return json.RawMessage(v) }

func ids(questions []models.Question) []uint {
	out := make([]uint, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ID)
	}
	return out
}

func TestCategories(t *testing.T) {
	svc, _, _ := setupService(t, 0)

	categories, err := svc.Categories(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 6)
	assert.Equal(t, uint(1), categories[0].ID)
	assert.Equal(t, "Science", categories[0].Type)
}

func TestCategoriesUsesCache(t *testing.T) {
	cache := &memoryCache{}
	svc, db, _ := setupService(t, 0, trivia.WithCategoryCache(cache))
	ctx := context.Background()

	first, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// the cached copy is served even once the table is gone
	require.NoError(t, db.Exec("DELETE FROM categories").Error)
	second, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestListQuestions(t *testing.T) {
	svc, _, seeded := setupService(t, 25)
	ctx := context.Background()

	page, err := svc.ListQuestions(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, ids(seeded[:10]), ids(page.Questions))
	assert.Equal(t, 25, page.Total)
	assert.Len(t, page.Categories, 6)

	page, err = svc.ListQuestions(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, ids(seeded[20:]), ids(page.Questions))
	assert.Equal(t, 25, page.Total)

	for _, p := range []int{0, 4, 100} {
		_, err = svc.ListQuestions(ctx, p)
		assert.True(t, errors.Is(err, errors.NotFound), "page %d", p)
	}
}

func TestListQuestionsWithoutQuestions(t *testing.T) {
	svc, _, _ := setupService(t, 0)

	_, err := svc.ListQuestions(context.Background(), 1)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestDeleteQuestion(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, seeded := setupService(t, 12, trivia.WithPublisher(publisher))
	ctx := context.Background()
	target := seeded[2].ID

	result, err := svc.DeleteQuestion(ctx, target, 1)
	require.NoError(t, err)
	assert.Equal(t, target, result.Deleted)
	assert.EqualValues(t, 11, result.Remaining)
	assert.Len(t, result.Questions, 10)
	assert.NotContains(t, ids(result.Questions), target)

	for p := 1; p <= 2; p++ {
		page, err := svc.ListQuestions(ctx, p)
		require.NoError(t, err)
		assert.NotContains(t, ids(page.Questions), target)
	}

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventQuestionDeleted, publisher.events[0].Type)
	assert.Equal(t, target, publisher.events[0].Question.ID)

	_, err = svc.DeleteQuestion(ctx, target, 1)
	assert.True(t, errors.Is(err, errors.Unprocessable))
}

func TestDeleteQuestionUsesRequestedPage(t *testing.T) {
	svc, _, seeded := setupService(t, 15)

	result, err := svc.DeleteQuestion(context.Background(), seeded[0].ID, 2)
	require.NoError(t, err)
	assert.Equal(t, ids(seeded[11:]), ids(result.Questions))
	assert.EqualValues(t, 14, result.Remaining)
}

func TestCreateQuestion(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, seeded := setupService(t, 5, trivia.WithPublisher(publisher))
	ctx := context.Background()

	result, err := svc.CreateQuestion(ctx, &models.CreateQuestionRequest{
		Question:   raw(`"Which planet is known as the <i>Red Planet</i>?"`),
		Answer:     raw(`"Mars"`),
		Difficulty: raw(`2`),
		Category:   raw(`"1"`),
	}, 1)
	require.NoError(t, err)
	assert.Greater(t, result.Created, seeded[len(seeded)-1].ID)
	assert.EqualValues(t, 6, result.Total)
	require.Len(t, result.Questions, 6)

	created := result.Questions[5]
	assert.Equal(t, result.Created, created.ID)
	assert.Equal(t, "Which planet is known as the <i>Red Planet</i>?", created.Question)
	assert.Equal(t, "1", created.Category)
	assert.Equal(t, 2, created.Difficulty)

	found, err := svc.SearchQuestions(ctx, &models.SearchRequest{SearchTerm: raw(`"red planet"`)}, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{result.Created}, ids(found.Questions))

	require.Len(t, publisher.events, 1)
	assert.Equal(t, models.EventQuestionCreated, publisher.events[0].Type)
}

func TestCreateQuestionStoresTextVerbatim(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()

	result, err := svc.CreateQuestion(ctx, &models.CreateQuestionRequest{
		Question:   raw(`"What does <b> do in HTML?"`),
		Answer:     raw(`"  bold <i>text</i> "`),
		Difficulty: raw(`1`),
		Category:   raw(`"1"`),
	}, 1)
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "What does <b> do in HTML?", result.Questions[0].Question)
	assert.Equal(t, "  bold <i>text</i> ", result.Questions[0].Answer)

	found, err := svc.SearchQuestions(ctx, &models.SearchRequest{SearchTerm: raw(`"<b>"`)}, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, found.Total)
	assert.Equal(t, []uint{result.Created}, ids(found.Questions))
}

func TestWritesSucceedForPagesPastTheEnd(t *testing.T) {
	svc, _, seeded := setupService(t, 3)
	ctx := context.Background()
	huge := math.MaxInt

	deleted, err := svc.DeleteQuestion(ctx, seeded[0].ID, huge)
	require.NoError(t, err)
	assert.Empty(t, deleted.Questions)
	assert.EqualValues(t, 2, deleted.Remaining)

	created, err := svc.CreateQuestion(ctx, &models.CreateQuestionRequest{
		Question: raw(`"Q?"`), Answer: raw(`"A"`), Difficulty: raw(`1`), Category: raw(`"1"`),
	}, huge)
	require.NoError(t, err)
	assert.Empty(t, created.Questions)
	assert.EqualValues(t, 3, created.Total)

	_, err = svc.ListQuestions(ctx, huge)
	assert.True(t, errors.Is(err, errors.NotFound))
}

func TestCreateQuestionLooseValues(t *testing.T) {
	svc, _, _ := setupService(t, 0)

	result, err := svc.CreateQuestion(context.Background(), &models.CreateQuestionRequest{
		Question:   raw(`"Q?"`),
		Answer:     raw(`42`),
		Difficulty: raw(`"3"`),
		Category:   raw(`99`),
	}, 1)
	require.NoError(t, err)
	require.Len(t, result.Questions, 1)
	assert.Equal(t, "42", result.Questions[0].Answer)
	assert.Equal(t, 3, result.Questions[0].Difficulty)
	// categories are not checked against the category table
	assert.Equal(t, "99", result.Questions[0].Category)
}

func TestCreateQuestionRejectsUnstorableValues(t *testing.T) {
	svc, db, _ := setupService(t, 0)
	ctx := context.Background()

	cases := map[string]*models.CreateQuestionRequest{
		"missing answer":  {Question: raw(`"Q?"`), Difficulty: raw(`1`), Category: raw(`"1"`)},
		"null question":   {Question: raw(`null`), Answer: raw(`"A"`), Difficulty: raw(`1`), Category: raw(`"1"`)},
		"word difficulty": {Question: raw(`"Q?"`), Answer: raw(`"A"`), Difficulty: raw(`"hard"`), Category: raw(`"1"`)},
		"object category": {Question: raw(`"Q?"`), Answer: raw(`"A"`), Difficulty: raw(`1`), Category: raw(`{"id":1}`)},
		"nil request":     nil,
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateQuestion(ctx, req, 1)
			assert.True(t, errors.Is(err, errors.Unprocessable))
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestSearchQuestions(t *testing.T) {
	svc, _, seeded := setupService(t, 12)
	ctx := context.Background()
	search := func(term string, page int) (*models.QuestionPage, error) {
		return svc.SearchQuestions(ctx, &models.SearchRequest{SearchTerm: raw(term)}, page)
	}

	page, err := search(`"number 12?"`, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{seeded[11].ID}, ids(page.Questions))
	assert.Equal(t, 1, page.Total)

	page, err = search(`"NUMBER 1"`, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{seeded[0].ID, seeded[9].ID, seeded[10].ID, seeded[11].ID}, ids(page.Questions))

	page, err = search(`"question"`, 2)
	require.NoError(t, err)
	assert.Len(t, page.Questions, 2)
	assert.Equal(t, 12, page.Total)

	page, err = search(`"zebra"`, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Questions)
	assert.NotNil(t, page.Questions)
	assert.Zero(t, page.Total)

	page, err = search(`"%"`, 1)
	require.NoError(t, err)
	assert.Empty(t, page.Questions)

	page, err = search(`""`, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, page.Total)

	_, err = svc.SearchQuestions(ctx, &models.SearchRequest{}, 1)
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = search(`null`, 1)
	assert.True(t, errors.Is(err, errors.NotFound))
	_, err = search(`["a"]`, 1)
	assert.True(t, errors.Is(err, errors.Invalid))
}

func TestQuestionsByCategoryShiftsCategory(t *testing.T) {
	// 12 questions over 6 categories: category "n" holds ids n and n+6
	svc, _, seeded := setupService(t, 12)
	ctx := context.Background()

	page, err := svc.QuestionsByCategory(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, page.CurrentCategory)
	assert.Equal(t, []uint{seeded[0].ID, seeded[6].ID}, ids(page.Questions))

	page, err = svc.QuestionsByCategory(ctx, 5, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, page.CurrentCategory)
	assert.Equal(t, []uint{seeded[5].ID, seeded[11].ID}, ids(page.Questions))

	_, err = svc.QuestionsByCategory(ctx, 6, 1)
	assert.True(t, errors.Is(err, errors.NotFound))

	// a page past the end of a non-empty category is an empty success
	page, err = svc.QuestionsByCategory(ctx, 0, 2)
	require.NoError(t, err)
	assert.Empty(t, page.Questions)
}

func TestCreatedQuestionAppearsUnderShiftedCategory(t *testing.T) {
	svc, _, _ := setupService(t, 0)
	ctx := context.Background()

	created, err := svc.CreateQuestion(ctx, &models.CreateQuestionRequest{
		Question: raw(`"Q?"`), Answer: raw(`"A"`), Difficulty: raw(`1`), Category: raw(`"1"`),
	}, 1)
	require.NoError(t, err)

	// category "1" is listed under path id 0, not 1
	_, err = svc.QuestionsByCategory(ctx, 1, 1)
	assert.True(t, errors.Is(err, errors.NotFound))

	page, err := svc.QuestionsByCategory(ctx, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint{created.Created}, ids(page.Questions))
}

func TestPlayQuiz(t *testing.T) {
	svc, _, seeded := setupService(t, 12)
	ctx := context.Background()
	play := func(category, previous string) (*models.Question, error) {
		return svc.PlayQuiz(ctx, &models.QuizRequest{QuizCategory: raw(category), PreviousQuestions: raw(previous)})
	}

	q, err := play(`{"type":"click","id":0}`, `[1,2,3,4,5,6,7,8,9,10,11]`)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, seeded[11].ID, q.ID)

	q, err = play(`{"type":"click","id":0}`, `[1,2,3,4,5,6,7,8,9,10,11,12]`)
	require.NoError(t, err)
	assert.Nil(t, q)

	q, err = play(`{"type":"Science","id":"1"}`, `[1]`)
	require.NoError(t, err)
	require.NotNil(t, q)
	assert.Equal(t, seeded[6].ID, q.ID)

	q, err = play(`{"type":"Science","id":1}`, `[1,7]`)
	require.NoError(t, err)
	assert.Nil(t, q)
}

func TestPlayQuizNeverRepeats(t *testing.T) {
	svc, _, _ := setupService(t, 12)
	ctx := context.Background()

	var previous []uint
	for round := 0; round < 12; round++ {
		prev, err := json.Marshal(previous)
		require.NoError(t, err)
		if previous == nil {
			prev = []byte(`[]`)
		}
		q, err := svc.PlayQuiz(ctx, &models.QuizRequest{
			QuizCategory:      raw(`{"type":"click","id":0}`),
			PreviousQuestions: prev,
		})
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.NotContains(t, previous, q.ID)
		previous = append(previous, q.ID)
	}
	assert.Len(t, previous, 12)
}

func TestPlayQuizUsesPicker(t *testing.T) {
	svc, _, seeded := setupService(t, 6, trivia.WithPicker(func(n int) int { return n - 1 }))

	q, err := svc.PlayQuiz(context.Background(), &models.QuizRequest{
		QuizCategory:      raw(`{"type":"click"}`),
		PreviousQuestions: raw(`[]`),
	})
	require.NoError(t, err)
	assert.Equal(t, seeded[5].ID, q.ID)
}

func TestPlayQuizRejectsMalformedPayload(t *testing.T) {
	svc, _, _ := setupService(t, 3)
	ctx := context.Background()

	cases := map[string]*models.QuizRequest{
		"nil":               nil,
		"missing category":  {PreviousQuestions: raw(`[]`)},
		"missing previous":  {QuizCategory: raw(`{"type":"click"}`)},
		"category string":   {QuizCategory: raw(`"click"`), PreviousQuestions: raw(`[]`)},
		"category null":     {QuizCategory: raw(`null`), PreviousQuestions: raw(`[]`)},
		"missing type":      {QuizCategory: raw(`{"id":1}`), PreviousQuestions: raw(`[]`)},
		"missing id":        {QuizCategory: raw(`{"type":"Art"}`), PreviousQuestions: raw(`[]`)},
		"previous not list": {QuizCategory: raw(`{"type":"click"}`), PreviousQuestions: raw(`"1,2"`)},
		"previous null":     {QuizCategory: raw(`{"type":"click"}`), PreviousQuestions: raw(`null`)},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.PlayQuiz(ctx, req)
			assert.True(t, errors.Is(err, errors.Unprocessable))
		})
	}
}

func TestCheckAnswer(t *testing.T) {
	svc, _, seeded := setupService(t, 3)
	ctx := context.Background()
	id := seeded[1].ID

	answer := "answer  2"
	result, err := svc.CheckAnswer(ctx, &models.AnswerRequest{QuestionID: &id, Answer: &answer})
	require.NoError(t, err)
	assert.True(t, result.Correct)
	assert.Equal(t, "Answer 2", result.Answer)

	wrong := "Answer 35"
	result, err = svc.CheckAnswer(ctx, &models.AnswerRequest{QuestionID: &id, Answer: &wrong})
	require.NoError(t, err)
	assert.False(t, result.Correct)

	missing := uint(999)
	_, err = svc.CheckAnswer(ctx, &models.AnswerRequest{QuestionID: &missing, Answer: &answer})
	assert.True(t, errors.Is(err, errors.NotFound))

	_, err = svc.CheckAnswer(ctx, &models.AnswerRequest{QuestionID: &id})
	assert.True(t, errors.Is(err, errors.Unprocessable))
}

func TestStorageFailuresAreInternal(t *testing.T) {
	svc, db, _ := setupService(t, 3)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	ctx := context.Background()

	_, err = svc.ListQuestions(ctx, 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))

	_, err = svc.CreateQuestion(ctx, &models.CreateQuestionRequest{
		Question: raw(`"Q?"`), Answer: raw(`"A"`), Difficulty: raw(`1`), Category: raw(`"1"`),
	}, 1)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))

	_, err = svc.PlayQuiz(ctx, &models.QuizRequest{
		QuizCategory: raw(`{"type":"click"}`), PreviousQuestions: raw(`[]`),
	})
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, errors.HTTPStatus(err))

	assert.Error(t, svc.Ping(ctx))
}
