package service

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/CHOISC1208/psi-erp/internal/repository"
	"github.com/rs/zerolog/log"
)

// PolicyService wraps the policy store with validation.
type PolicyService struct {
	repo repository.PolicyRepository
}

func NewPolicyService(repo repository.PolicyRepository) *PolicyService {
	return &PolicyService{repo: repo}
}

func (s *PolicyService) Get(ctx context.Context) (domain.ReallocationPolicy, error) {
	return s.repo.Get(ctx)
}

func (s *PolicyService) Update(ctx context.Context, policy domain.ReallocationPolicy, updatedBy *string) (domain.ReallocationPolicy, error) {
	if err := policy.Validate(); err != nil {
		return domain.ReallocationPolicy{}, err
	}
	updated, err := s.repo.Update(ctx, policy, updatedBy)
	if err != nil {
		return domain.ReallocationPolicy{}, err
	}
	log.Info().
		Bool("take_from_other_main", updated.TakeFromOtherMain).
		Str("rounding_mode", string(updated.RoundingMode)).
		Bool("allow_overfill", updated.AllowOverfill).
		Str("fair_share_mode", string(updated.FairShareMode)).
		Str("deficit_basis", string(updated.DeficitBasis)).
		Msg("reallocation policy updated")
	return updated, nil
}
