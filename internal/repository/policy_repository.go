package repository

import (
	"context"

	"github.com/CHOISC1208/psi-erp/internal/domain"
)

// PolicyRepository manages the single reallocation policy row.
//
// Reads degrade to the built-in defaults when the policy table does not
// exist yet, so a fresh database behaves sensibly. Writes never degrade:
// updating against a missing table is an error the caller must see.
type PolicyRepository interface {
	Get(ctx context.Context) (domain.ReallocationPolicy, error)
	Update(ctx context.Context, policy domain.ReallocationPolicy, updatedBy *string) (domain.ReallocationPolicy, error)
}
