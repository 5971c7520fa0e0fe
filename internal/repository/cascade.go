package repository

import (
	"gorm.io/gorm"

	"github.com/noah-isme/survey-go-api/internal/audit"
	"github.com/noah-isme/survey-go-api/internal/models"
)

// deleteResponse removes a response and its answers.
func deleteResponse(tx *gorm.DB, rec *audit.Recorder, response *models.SurveyResponse) error {
	if err := deleteWhere[models.Answer](tx, rec, "response_id = ?", response.ID); err != nil {
		return err
	}
	if err := tx.Delete(response).Error; err != nil {
		return err
	}
	rec.Deleted(response)
	return nil
}

// deleteQuestion removes a question with its options and every answer given
// to it. Scores of the affected responses are recomputed.
func deleteQuestion(tx *gorm.DB, rec *audit.Recorder, question *models.Question) error {
	var responseIDs []uint
	if err := tx.Model(&models.Answer{}).Where("question_id = ?", question.ID).Distinct().Pluck("response_id", &responseIDs).Error; err != nil {
		return err
	}

	if err := deleteWhere[models.Answer](tx, rec, "question_id = ?", question.ID); err != nil {
		return err
	}
	if err := deleteWhere[models.QuestionOption](tx, rec, "question_id = ?", question.ID); err != nil {
		return err
	}
	if err := tx.Delete(question).Error; err != nil {
		return err
	}
	rec.Deleted(question)

	for _, responseID := range responseIDs {
		if err := recomputeScore(tx, rec, responseID); err != nil {
			return err
		}
	}
	return nil
}

// deleteSurvey removes a survey with its responses and questions.
func deleteSurvey(tx *gorm.DB, rec *audit.Recorder, survey *models.Survey) error {
	var responses []models.SurveyResponse
	if err := tx.Where("survey_id = ?", survey.ID).Find(&responses).Error; err != nil {
		return err
	}
	for i := range responses {
		if err := deleteResponse(tx, rec, &responses[i]); err != nil {
			return err
		}
	}

	var questions []models.Question
	if err := tx.Where("survey_id = ?", survey.ID).Find(&questions).Error; err != nil {
		return err
	}
	for i := range questions {
		if err := deleteWhere[models.QuestionOption](tx, rec, "question_id = ?", questions[i].ID); err != nil {
			return err
		}
		if err := tx.Delete(&questions[i]).Error; err != nil {
			return err
		}
		rec.Deleted(&questions[i])
	}

	var competitions []models.Competition
	if err := tx.Where("related_survey_id = ?", survey.ID).Find(&competitions).Error; err != nil {
		return err
	}
	for i := range competitions {
		before := competitions[i]
		competitions[i].RelatedSurveyID = nil
		rec.Updated(&before, &competitions[i])
		if err := persist(tx, &competitions[i]); err != nil {
			return err
		}
	}

	if err := tx.Delete(survey).Error; err != nil {
		return err
	}
	rec.Deleted(survey)
	return nil
}

// recomputeScore refreshes a response score from its current answer set.
// Nothing is written when the score is unchanged.
func recomputeScore(tx *gorm.DB, rec *audit.Recorder, responseID uint) error {
	var response models.SurveyResponse
	if err := tx.First(&response, responseID).Error; err != nil {
		return err
	}

	var answers []models.Answer
	if err := tx.Where("response_id = ?", responseID).Preload("Option").Find(&answers).Error; err != nil {
		return err
	}

	score := models.ScoreOf(answers)
	if sameScore(response.Score, score) {
		return nil
	}

	updated := response
	updated.Score = score
	rec.Updated(&response, &updated)
	return persist(tx, &updated)
}

func sameScore(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return models.Round2(*a) == models.Round2(*b)
}
