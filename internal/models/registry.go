package models

// All returns every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Survey{},
		&Question{},
		&QuestionOption{},
		&SurveyResponse{},
		&Answer{},
		&Competition{},
		&CompetitionWinner{},
		&EffectiveParticipation{},
		&Notification{},
		&Faq{},
		&SupportInfo{},
		&AuditLog{},
	}
}
