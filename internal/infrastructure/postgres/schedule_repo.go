package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bibbank/bib/services/origination-service/internal/domain/model"
	"github.com/bibbank/bib/services/origination-service/internal/domain/port"
	"github.com/bibbank/bib/services/origination-service/pkg/money"
	pgutil "github.com/bibbank/bib/services/origination-service/pkg/postgres"
)

// DB is the pool surface the repository needs; *pgxpool.Pool satisfies it.
type DB interface {
	pgutil.Querier
	pgutil.TxStarter
}

// ScheduleRepo implements port.ScheduleRepository.
type ScheduleRepo struct {
	db DB
}

// NewScheduleRepo creates a new PostgreSQL-backed schedule repository.
func NewScheduleRepo(db DB) *ScheduleRepo {
	return &ScheduleRepo{db: db}
}

var _ port.ScheduleRepository = (*ScheduleRepo)(nil)

// Save inserts a schedule and all of its rows in one transaction. A loan
// holds at most one schedule; a second Save returns port.ErrScheduleExists.
func (r *ScheduleRepo) Save(ctx context.Context, s model.PaymentSchedule) error {
	return pgutil.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		scheduleQuery := `
			INSERT INTO payment_schedules (
				id, loan_id, customer_id, currency,
				principal, annual_rate, tax_rate, term_months,
				monthly_payment, start_date, generated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
			ON CONFLICT (loan_id) DO NOTHING
		`
		tag, err := tx.Exec(ctx, scheduleQuery,
			s.ID, s.LoanID, s.CustomerID, s.Currency.Code(),
			s.Principal, s.AnnualRate, s.TaxRate, s.TermMonths,
			s.MonthlyPayment, s.StartDate, s.GeneratedAt,
		)
		if err != nil {
			return fmt.Errorf("save schedule: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: %s", port.ErrScheduleExists, s.LoanID)
		}

		paymentQuery := `
			INSERT INTO schedule_payments (
				schedule_id, payment_number, due_date,
				principal, interest, tax, total, remaining_balance,
				paid, paid_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		`
		batch := &pgx.Batch{}
		for _, p := range s.Payments {
			batch.Queue(paymentQuery,
				s.ID, p.Number, p.DueDate,
				p.Principal, p.Interest, p.Tax, p.Total, p.RemainingBalance,
				p.Paid, p.PaidAt,
			)
		}
		br := tx.SendBatch(ctx, batch)
		for _, p := range s.Payments {
			if _, err := br.Exec(); err != nil {
				_ = br.Close()
				return fmt.Errorf("save payment %d: %w", p.Number, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("save payments: %w", err)
		}
		return nil
	})
}

// FindByLoanID loads the schedule of a loan with its rows in order. The
// summary is derived as of the generation time; callers re-derive it with
// AsOf for the date they need.
func (r *ScheduleRepo) FindByLoanID(ctx context.Context, loanID string) (model.PaymentSchedule, error) {
	query := `
		SELECT id, loan_id, customer_id, currency,
		       principal, annual_rate, tax_rate, term_months,
		       monthly_payment, start_date, generated_at
		FROM payment_schedules
		WHERE loan_id = $1
	`
	s, err := scanSchedule(r.db.QueryRow(ctx, query, loanID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.PaymentSchedule{}, fmt.Errorf("%w: %s", port.ErrScheduleNotFound, loanID)
	}
	if err != nil {
		return model.PaymentSchedule{}, err
	}

	s.Payments, err = r.loadPayments(ctx, s.ID)
	if err != nil {
		return model.PaymentSchedule{}, err
	}
	return s.AsOf(s.GeneratedAt), nil
}

func (r *ScheduleRepo) loadPayments(ctx context.Context, scheduleID string) ([]model.Payment, error) {
	query := `
		SELECT payment_number, due_date, principal, interest, tax, total,
		       remaining_balance, paid, paid_at
		FROM schedule_payments
		WHERE schedule_id = $1
		ORDER BY payment_number
	`
	rows, err := r.db.Query(ctx, query, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("query schedule payments: %w", err)
	}
	defer rows.Close()

	var result []model.Payment
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(
			&p.Number, &p.DueDate, &p.Principal, &p.Interest, &p.Tax, &p.Total,
			&p.RemainingBalance, &p.Paid, &p.PaidAt,
		); err != nil {
			return nil, fmt.Errorf("scan schedule payment: %w", err)
		}
		p.DueDate = p.DueDate.UTC()
		if p.PaidAt != nil {
			at := p.PaidAt.UTC()
			p.PaidAt = &at
		}
		result = append(result, p)
	}
	return result, rows.Err()
}

// MarkPaid flags one row as paid. Marking a paid row again keeps the first
// settlement time and succeeds.
func (r *ScheduleRepo) MarkPaid(ctx context.Context, loanID string, paymentNumber int, paidAt time.Time) error {
	query := `
		UPDATE schedule_payments sp
		SET paid = TRUE, paid_at = $3
		FROM payment_schedules ps
		WHERE sp.schedule_id = ps.id
		  AND ps.loan_id = $1
		  AND sp.payment_number = $2
		  AND NOT sp.paid
	`
	tag, err := r.db.Exec(ctx, query, loanID, paymentNumber, paidAt.UTC())
	if err != nil {
		return fmt.Errorf("mark payment paid: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}
	return r.explainNoUpdate(ctx, loanID, paymentNumber)
}

// explainNoUpdate tells an already-paid row apart from a missing one.
func (r *ScheduleRepo) explainNoUpdate(ctx context.Context, loanID string, paymentNumber int) error {
	query := `
		SELECT ps.term_months, COALESCE(sp.paid, FALSE)
		FROM payment_schedules ps
		LEFT JOIN schedule_payments sp
		       ON sp.schedule_id = ps.id AND sp.payment_number = $2
		WHERE ps.loan_id = $1
	`
	var (
		term int
		paid bool
	)
	err := r.db.QueryRow(ctx, query, loanID, paymentNumber).Scan(&term, &paid)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%w: %s", port.ErrScheduleNotFound, loanID)
	}
	if err != nil {
		return fmt.Errorf("check payment: %w", err)
	}
	if paid {
		return nil
	}
	return fmt.Errorf("%w: %d of %d", model.ErrPaymentNotFound, paymentNumber, term)
}

func scanSchedule(row pgx.Row) (model.PaymentSchedule, error) {
	var (
		s            model.PaymentSchedule
		currencyCode string
	)
	err := row.Scan(
		&s.ID, &s.LoanID, &s.CustomerID, &currencyCode,
		&s.Principal, &s.AnnualRate, &s.TaxRate, &s.TermMonths,
		&s.MonthlyPayment, &s.StartDate, &s.GeneratedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.PaymentSchedule{}, err
		}
		return model.PaymentSchedule{}, fmt.Errorf("scan schedule: %w", err)
	}

	s.Currency, err = money.NewCurrency(currencyCode)
	if err != nil {
		return model.PaymentSchedule{}, fmt.Errorf("parse schedule currency: %w", err)
	}
	s.StartDate = s.StartDate.UTC()
	s.GeneratedAt = s.GeneratedAt.UTC()
	return s, nil
}
