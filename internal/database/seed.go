package database

import (
	_ "embed"
	"fmt"

	"github.com/Aidin1998/trivia/pkg/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed seed.yaml
var seedYAML []byte

type seedData struct {
	Categories []models.Category `yaml:"categories"`
	Questions  []seedQuestion    `yaml:"questions"`
}

type seedQuestion struct {
	Question   string `yaml:"question"`
	Answer     string `yaml:"answer"`
	Category   string `yaml:"category"`
	Difficulty int    `yaml:"difficulty"`
}

func loadSeed(raw []byte) (*seedData, error) {
	var data seedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	return &data, nil
}

// Seed fills empty tables with the bundled categories and questions. Tables
// that already hold rows are left untouched.
func Seed(db *gorm.DB, log *zap.Logger) error {
	data, err := loadSeed(seedYAML)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Category{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count categories: %w", err)
		}
		if count == 0 && len(data.Categories) > 0 {
			if err := tx.Create(&data.Categories).Error; err != nil {
				return fmt.Errorf("failed to seed categories: %w", err)
			}
			log.Info("Seeded categories", zap.Int("count", len(data.Categories)))
		}

		if err := tx.Model(&models.Question{}).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		if count == 0 && len(data.Questions) > 0 {
			questions := make([]models.Question, 0, len(data.Questions))
			for _, q := range data.Questions {
				questions = append(questions, models.Question{
					Question:   q.Question,
					Answer:     q.Answer,
					Category:   q.Category,
					Difficulty: q.Difficulty,
				})
			}
			if err := tx.Create(&questions).Error; err != nil {
				return fmt.Errorf("failed to seed questions: %w", err)
			}
			log.Info("Seeded questions", zap.Int("count", len(questions)))
		}
		return nil
	})
}
