package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type taxpayerProfileRepository struct {
	db *database.DB
}

func NewTaxpayerProfileRepository(db *database.DB) tax.TaxpayerProfileRepository {
	return &taxpayerProfileRepository{db: db}
}

func (r *taxpayerProfileRepository) GetTaxpayerProfile(ctx context.Context, employeeID string) (tax.TaxpayerProfile, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, COALESCE(tax_status, ''), COALESCE(npwp, '') <> '',
			   COALESCE(override_method, ''), is_female_joint_filer,
			   COALESCE(employment_category, ''),
			   health_insurance_enrolled, employment_insurance_enrolled
		FROM taxpayer_profiles
		WHERE employee_id = $1
	`

	var p tax.TaxpayerProfile
	var overrideMethod, employmentCategory string
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&p.EmployeeID, &p.TaxStatus, &p.HasTaxID,
		&overrideMethod, &p.IsFemaleJointFiler,
		&employmentCategory,
		&p.HealthInsuranceEnrolled, &p.EmploymentInsuranceEnrolled,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tax.TaxpayerProfile{}, tax.ErrProfileNotFound
		}
		return tax.TaxpayerProfile{}, fmt.Errorf("failed to get taxpayer profile: %w", err)
	}
	p.OverrideMethod = tax.CalculationMethod(overrideMethod)
	p.EmploymentCategory = tax.EmploymentCategory(employmentCategory)

	return p, nil
}
