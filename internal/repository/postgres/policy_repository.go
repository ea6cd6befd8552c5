package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/CHOISC1208/psi-erp/internal/domain"
	"github.com/rs/zerolog/log"
)

// ErrPolicyTableMissing signals that the reallocation_policy table has not
// been migrated yet. Reads swallow it; updates surface it.
var ErrPolicyTableMissing = errors.New("reallocation_policy table does not exist")

type policyRepository struct {
	db *DB
}

func NewPolicyRepository(db *DB) *policyRepository {
	return &policyRepository{db: db}
}

func (r *policyRepository) tableExists(ctx context.Context) (bool, error) {
	var regclass sql.NullString
	err := r.db.GetContext(ctx, &regclass, `SELECT to_regclass('public.reallocation_policy')`)
	if err != nil {
		return false, fmt.Errorf("failed to probe policy table: %w", err)
	}
	return regclass.Valid, nil
}

// Get returns the singleton policy row, falling back to the defaults when
// the table or the row is missing. A half-migrated database must never take
// the engine down.
func (r *policyRepository) Get(ctx context.Context) (domain.ReallocationPolicy, error) {
	exists, err := r.tableExists(ctx)
	if err != nil {
		return domain.ReallocationPolicy{}, err
	}
	if !exists {
		log.Warn().Msg("reallocation_policy table missing, serving defaults")
		return domain.DefaultReallocationPolicy(), nil
	}

	var policy domain.ReallocationPolicy
	err = r.db.GetContext(ctx, &policy, `
		SELECT take_from_other_main, rounding_mode, allow_overfill,
		       fair_share_mode, deficit_basis, updated_at, updated_by
		FROM reallocation_policy
		WHERE id = 1
	`)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DefaultReallocationPolicy(), nil
	}
	if err != nil {
		return domain.ReallocationPolicy{}, fmt.Errorf("failed to get policy: %w", err)
	}
	return policy, nil
}

// Update upserts the singleton row. Unlike Get it refuses to degrade: a
// write against a missing table is a hard error.
func (r *policyRepository) Update(ctx context.Context, policy domain.ReallocationPolicy, updatedBy *string) (domain.ReallocationPolicy, error) {
	exists, err := r.tableExists(ctx)
	if err != nil {
		return domain.ReallocationPolicy{}, err
	}
	if !exists {
		return domain.ReallocationPolicy{}, ErrPolicyTableMissing
	}

	var updated domain.ReallocationPolicy
	err = r.db.GetContext(ctx, &updated, `
		INSERT INTO reallocation_policy (
			id, take_from_other_main, rounding_mode, allow_overfill,
			fair_share_mode, deficit_basis, updated_at, updated_by
		) VALUES (1, $1, $2, $3, $4, $5, NOW(), $6)
		ON CONFLICT (id) DO UPDATE SET
			take_from_other_main = EXCLUDED.take_from_other_main,
			rounding_mode = EXCLUDED.rounding_mode,
			allow_overfill = EXCLUDED.allow_overfill,
			fair_share_mode = EXCLUDED.fair_share_mode,
			deficit_basis = EXCLUDED.deficit_basis,
			updated_at = NOW(),
			updated_by = EXCLUDED.updated_by
		RETURNING take_from_other_main, rounding_mode, allow_overfill,
		          fair_share_mode, deficit_basis, updated_at, updated_by
	`, policy.TakeFromOtherMain, policy.RoundingMode, policy.AllowOverfill,
		policy.FairShareMode, policy.DeficitBasis, updatedBy)
	if err != nil {
		return domain.ReallocationPolicy{}, fmt.Errorf("failed to update policy: %w", err)
	}
	return updated, nil
}
