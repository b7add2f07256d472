package services

import "github.com/c14220110/findmyclinic-backend/internal/models"

// transitionMap lists, per target status, the statuses a token may move from.
var transitionMap = map[string][]string{
	models.TokenStatusCalled:    {models.TokenStatusWaiting},
	models.TokenStatusCompleted: {models.TokenStatusCalled},
	models.TokenStatusCancelled: {models.TokenStatusWaiting, models.TokenStatusCalled},
	models.TokenStatusWaiting:   {models.TokenStatusCalled}, // recall
}

func ValidTransition(to, from string) bool {
	for _, status := range transitionMap[to] {
		if status == from {
			return true
		}
	}
	return false
}
