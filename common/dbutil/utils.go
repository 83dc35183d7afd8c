package dbutil

import (
	"github.com/Aidin1998/trivia/pkg/errors"
	"github.com/Aidin1998/trivia/pkg/models"
	"gorm.io/gorm"
)

// FindQuestion loads a question by primary key. Delete and the answer check
// both start here; a missing id is errors.NotFound and callers decide what
// that means for their endpoint.
func FindQuestion(db *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	result := db.Where("id = ?", id).Limit(1).Find(&question)
	if result.Error != nil {
		return nil, WrapError(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, errors.NotFound.Explain("question %d not found", id)
	}
	return &question, nil
}
