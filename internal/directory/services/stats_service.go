package services

import (
	"context"
	"fmt"
	"math"

	"github.com/c14220110/findmyclinic-backend/pkg/storage"
)

// baselineWaitMinutes is the assumed walk-in wait the service saves against.
const baselineWaitMinutes = 120

type Stats struct {
	ClinicsConnected int    `json:"clinicsConnected"`
	PatientsServed   int    `json:"patientsServed"`
	AvgTimeSaved     string `json:"avgTimeSaved"`
}

type StatsService struct {
	Store storage.Storage
}

func NewStatsService(store storage.Storage) *StatsService {
	return &StatsService{Store: store}
}

func (s *StatsService) GetStats(ctx context.Context) (Stats, error) {
	clinics, err := s.Store.GetClinics(ctx)
	if err != nil {
		return Stats{}, err
	}

	served := 0
	totalWait := 0
	for _, c := range clinics {
		tokens, err := s.Store.GetQueueTokens(ctx, c.ID)
		if err != nil {
			return Stats{}, fmt.Errorf("tokens of clinic %s: %w", c.ID, err)
		}
		served += len(tokens)
		totalWait += c.CurrentWaitTime
	}

	avgWait := 0
	if len(clinics) > 0 {
		avgWait = int(math.Round(float64(totalWait) / float64(len(clinics))))
	}
	saved := baselineWaitMinutes - avgWait
	if saved < 0 {
		saved = 0
	}

	return Stats{
		ClinicsConnected: len(clinics),
		PatientsServed:   served,
		AvgTimeSaved:     fmt.Sprintf("%d min", saved),
	}, nil
}
