package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/tax"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/database"
)

type ytdRepository struct {
	db *database.DB
}

func NewYTDRepository(db *database.DB) tax.YTDRepository {
	return &ytdRepository{db: db}
}

// GetYTDAggregate sums submitted months strictly before beforeMonth.
// An employee with no submitted months yields a zero aggregate.
func (r *ytdRepository) GetYTDAggregate(ctx context.Context, employeeID string, year, beforeMonth int) (tax.YearToDateAggregate, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(gross_pay), 0),
			   COALESCE(SUM(bpjs_deductions), 0),
			   COALESCE(SUM(tax_amount), 0)
		FROM monthly_tax_details
		WHERE employee_id = $1 AND year = $2 AND month < $3
	`

	agg := tax.YearToDateAggregate{EmployeeID: employeeID, Year: year, BeforeMonth: beforeMonth}
	err := q.QueryRow(ctx, query, employeeID, year, beforeMonth).Scan(&agg.Gross, &agg.BPJS, &agg.TaxPaid)
	if err != nil {
		return tax.YearToDateAggregate{}, fmt.Errorf("failed to aggregate year-to-date tax: %w", err)
	}

	return agg, nil
}

// UpsertMonthlyDetail records one month, replacing an earlier submission for the same month.
// Submissions for one employee and year are serialized with an advisory lock.
func (r *ytdRepository) UpsertMonthlyDetail(ctx context.Context, detail tax.MonthlyTaxDetail) (tax.MonthlyTaxDetail, error) {
	var saved tax.MonthlyTaxDetail

	err := WithTransaction(ctx, r.db, func(ctx context.Context) error {
		q := GetQuerier(ctx, r.db)

		if _, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), $2)`, detail.EmployeeID, detail.Year); err != nil {
			return fmt.Errorf("failed to lock monthly tax details: %w", err)
		}

		query := `
			INSERT INTO monthly_tax_details (
				employee_id, year, month, gross_pay, bpjs_deductions, tax_amount,
				is_using_ter, ter_rate, ter_category
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''))
			ON CONFLICT (employee_id, year, month) DO UPDATE SET
				gross_pay = EXCLUDED.gross_pay,
				bpjs_deductions = EXCLUDED.bpjs_deductions,
				tax_amount = EXCLUDED.tax_amount,
				is_using_ter = EXCLUDED.is_using_ter,
				ter_rate = EXCLUDED.ter_rate,
				ter_category = EXCLUDED.ter_category,
				updated_at = NOW()
			RETURNING id, employee_id, year, month, gross_pay, bpjs_deductions, tax_amount,
				is_using_ter, ter_rate, COALESCE(ter_category, ''), created_at, updated_at
		`

		var category string
		err := q.QueryRow(ctx, query,
			detail.EmployeeID, detail.Year, detail.Month, detail.GrossPay, detail.BPJSDeductions, detail.TaxAmount,
			detail.IsUsingTER, detail.TERRate, string(detail.TERCategory),
		).Scan(
			&saved.ID, &saved.EmployeeID, &saved.Year, &saved.Month, &saved.GrossPay, &saved.BPJSDeductions, &saved.TaxAmount,
			&saved.IsUsingTER, &saved.TERRate, &category, &saved.CreatedAt, &saved.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert monthly tax detail: %w", err)
		}
		saved.TERCategory = tax.TERCategory(category)
		return nil
	})
	if err != nil {
		return tax.MonthlyTaxDetail{}, err
	}

	return saved, nil
}
