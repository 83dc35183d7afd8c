package testutil

import (
	"strconv"
	"testing"

	"github.com/Aidin1998/trivia/internal/database"
	"github.com/Aidin1998/trivia/pkg/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database. The pool is pinned
// to a single connection since every SQLite memory connection is its own
// database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

// Categories are the six categories the trivia client knows about
var Categories = []models.Category{
	{ID: 1, Type: "Science"},
	{ID: 2, Type: "Art"},
	{ID: 3, Type: "Geography"},
	{ID: 4, Type: "History"},
	{ID: 5, Type: "Entertainment"},
	{ID: 6, Type: "Sports"},
}

// SeedCategories inserts Categories
func SeedCategories(t *testing.T, db *gorm.DB) {
	t.Helper()
	cats := append([]models.Category(nil), Categories...)
	require.NoError(t, db.Create(&cats).Error)
}

// SeedQuestions inserts n questions numbered from 1, spread over the
// categories round-robin, and returns them in id order.
func SeedQuestions(t *testing.T, db *gorm.DB, n int) []models.Question {
	t.Helper()
	questions := make([]models.Question, 0, n)
	for i := 1; i <= n; i++ {
		q := models.Question{
			Question:   "Question number " + strconv.Itoa(i) + "?",
			Answer:     "Answer " + strconv.Itoa(i),
			Category:   strconv.Itoa((i-1)%len(Categories) + 1),
			Difficulty: (i-1)%5 + 1,
		}
		require.NoError(t, db.Create(&q).Error)
		questions = append(questions, q)
	}
	return questions
}
