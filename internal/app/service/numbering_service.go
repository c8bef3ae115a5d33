package service

import (
	"context"
	"fmt"
	"time"

	"github.com/kocaeli-bel/imar-backend/internal/app/repository"
	"github.com/kocaeli-bel/imar-backend/pkg/logger"
)

// NumberingService hands out application and permit numbers. Both counters
// are scoped to the calendar month embedded in the number, so the 4-digit
// sequence and the date prefix always agree:
//
//	başvuru no: IR + yyyy + MM + dd + SSSS
//	ruhsat no:  RU + yyyy + MM + SSSS
type NumberingService interface {
	NextBasvuruNo(ctx context.Context) (string, error)
	NextRuhsatNo(ctx context.Context) (string, error)
}

type numberingService struct {
	seqRepo repository.SequenceRepository
	now     func() time.Time
}

func NewNumberingService(seqRepo repository.SequenceRepository) NumberingService {
	return &numberingService{
		seqRepo: seqRepo,
		now:     time.Now,
	}
}

func (s *numberingService) NextBasvuruNo(ctx context.Context) (string, error) {
	now := s.now()
	scope := fmt.Sprintf("basvuru:%04d%02d", now.Year(), int(now.Month()))

	seq, err := s.seqRepo.Next(ctx, scope)
	if err != nil {
		logger.Error("Failed to generate application number", err, map[string]interface{}{
			"scope": scope,
		})
		return "", err
	}

	no := fmt.Sprintf("IR%04d%02d%02d%04d", now.Year(), int(now.Month()), now.Day(), seq)
	logger.Debug("Application number generated", map[string]interface{}{
		"basvuru_no": no,
	})
	return no, nil
}

func (s *numberingService) NextRuhsatNo(ctx context.Context) (string, error) {
	now := s.now()
	scope := fmt.Sprintf("ruhsat:%04d%02d", now.Year(), int(now.Month()))

	seq, err := s.seqRepo.Next(ctx, scope)
	if err != nil {
		logger.Error("Failed to generate permit number", err, map[string]interface{}{
			"scope": scope,
		})
		return "", err
	}

	no := fmt.Sprintf("RU%04d%02d%04d", now.Year(), int(now.Month()), seq)
	logger.Debug("Permit number generated", map[string]interface{}{
		"ruhsat_no": no,
	})
	return no, nil
}
