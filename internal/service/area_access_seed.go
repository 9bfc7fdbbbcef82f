package service

import (
	"context"
	"log"

	"area-access-service/internal/domain"
	"area-access-service/internal/repository"
	"area-access-service/internal/usecase"
	"area-access-service/pkg/xerrors"
)

// AreaSeedService seeds the default area catalog and role default sets
type AreaSeedService struct {
	uc   *usecase.AreaAccessUsecase
	repo repository.AreaAccessRepository
}

// NewAreaSeedService creates a new instance
func NewAreaSeedService(uc *usecase.AreaAccessUsecase, repo repository.AreaAccessRepository) *AreaSeedService {
	return &AreaSeedService{uc: uc, repo: repo}
}

// SeedDefaults ensures the default areas and role defaults exist in DB
func (s *AreaSeedService) SeedDefaults(ctx context.Context) error {
	areas := domain.GetDefaultAreas()

	created, areaErrs, err := s.uc.CreateAreas(ctx, areas)
	if err != nil {
		logError("Error creating areas", err)
		return err
	}
	logWarnings("Area seed warning", areaErrs)
	for _, a := range created {
		log.Printf("📦 Seeded area: %s (%s)", a.Code, a.Name)
	}

	roleDefaults, err := domain.GetDefaultRoleAreas()
	if err != nil {
		logError("Failed to build default role areas", err)
		return err
	}

	defaultErrs, err := s.repo.SeedRoleDefaults(ctx, roleDefaults)
	if err != nil {
		logError("Error seeding role defaults", err)
		return err
	}
	logWarnings("Role default seed warning", defaultErrs)

	log.Printf("✅ Seeded %d areas and %d role default rows", len(created), len(roleDefaults))
	return nil
}

func logError(msg string, err error) {
	log.Printf("❌ %s: %v", msg, err)
}

func logWarnings(msg string, errs []*xerrors.RepoError) {
	for _, e := range errs {
		log.Printf("⚠️ %s: %s (%s): %s", msg, e.Entity, e.Ref, e.Msg)
	}
}
