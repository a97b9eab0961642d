package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/food-donation-service/internal/domain"
)

// DonationFilter captures listing parameters.
type DonationFilter struct {
	DonorID  *string
	AgentID  *string
	Statuses []domain.DonationStatus
	Limit    int
	Offset   int
}

// DonationRepository encapsulates donation persistence.
type DonationRepository interface {
	Create(ctx context.Context, donation *domain.Donation) error
	Update(ctx context.Context, donation *domain.Donation) error
	GetByID(ctx context.Context, id string) (*domain.Donation, error)
	ListWithFilter(ctx context.Context, filter DonationFilter) ([]domain.Donation, error)
	CountWithFilter(ctx context.Context, filter DonationFilter) (int64, error)
}

type donationRepository struct {
	pool *pgxpool.Pool
}

// NewDonationRepository instantiates repository.
func NewDonationRepository(pool *pgxpool.Pool) DonationRepository {
	return &donationRepository{pool: pool}
}

func (r *donationRepository) Create(ctx context.Context, donation *domain.Donation) error {
	const query = `
        INSERT INTO donations (donor_user_id, item_name, description, quantity, address, phone, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		donation.DonorID,
		donation.ItemName,
		donation.Description,
		donation.Quantity,
		donation.Address,
		donation.Phone,
		donation.Status,
	).Scan(&donation.ID, &donation.CreatedAt, &donation.UpdatedAt)
}

func (r *donationRepository) Update(ctx context.Context, donation *domain.Donation) error {
	const query = `
        UPDATE donations SET item_name=$1, description=$2, quantity=$3, address=$4, phone=$5,
            status=$6, agent_user_id=$7, admin_to_agent_msg=$8, collection_time=$9, updated_at=NOW()
        WHERE id=$10`
	cmd, err := r.pool.Exec(ctx, query,
		donation.ItemName,
		donation.Description,
		donation.Quantity,
		donation.Address,
		donation.Phone,
		donation.Status,
		donation.AgentID,
		donation.AdminToAgentMsg,
		donation.CollectionTime,
		donation.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *donationRepository) GetByID(ctx context.Context, id string) (*domain.Donation, error) {
	const query = `
        SELECT id, donor_user_id, item_name, description, quantity, address, phone,
               status, agent_user_id, admin_to_agent_msg, collection_time, created_at, updated_at
        FROM donations WHERE id=$1`

	var donation domain.Donation
	if err := r.pool.QueryRow(ctx, query, id).Scan(
		&donation.ID,
		&donation.DonorID,
		&donation.ItemName,
		&donation.Description,
		&donation.Quantity,
		&donation.Address,
		&donation.Phone,
		&donation.Status,
		&donation.AgentID,
		&donation.AdminToAgentMsg,
		&donation.CollectionTime,
		&donation.CreatedAt,
		&donation.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *donationRepository) ListWithFilter(ctx context.Context, filter DonationFilter) ([]domain.Donation, error) {
	base := `SELECT id, donor_user_id, item_name, description, quantity, address, phone,
                    status, agent_user_id, admin_to_agent_msg, collection_time, created_at, updated_at
             FROM donations`
	clauses, args := buildDonationClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY updated_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanDonations(rows)
}

func (r *donationRepository) CountWithFilter(ctx context.Context, filter DonationFilter) (int64, error) {
	clauses, args := buildDonationClauses(filter)
	query := fmt.Sprintf(`SELECT COUNT(*) FROM donations WHERE %s`, strings.Join(clauses, " AND "))

	var count int64
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func buildDonationClauses(filter DonationFilter) ([]string, []any) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.DonorID != nil {
		args = append(args, *filter.DonorID)
		clauses = append(clauses, fmt.Sprintf("donor_user_id=$%d", len(args)))
	}
	if filter.AgentID != nil {
		args = append(args, *filter.AgentID)
		clauses = append(clauses, fmt.Sprintf("agent_user_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}
	return clauses, args
}

func scanDonations(rows pgx.Rows) ([]domain.Donation, error) {
	var result []domain.Donation
	for rows.Next() {
		var donation domain.Donation
		if err := rows.Scan(
			&donation.ID,
			&donation.DonorID,
			&donation.ItemName,
			&donation.Description,
			&donation.Quantity,
			&donation.Address,
			&donation.Phone,
			&donation.Status,
			&donation.AgentID,
			&donation.AdminToAgentMsg,
			&donation.CollectionTime,
			&donation.CreatedAt,
			&donation.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, donation)
	}
	return result, rows.Err()
}
