package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"namcportal/internal/domain"
	"namcportal/internal/domain/models"
	"namcportal/internal/domain/repositories"
)

const memberColumns = `id, user_id, company, first_name, last_name, email, phone,
	specialties, city, state, website, certifications, is_public,
	hubspot_contact_id, created_at, updated_at, deleted_at`

// PostgresMemberRepository implements the MemberRepository interface
type PostgresMemberRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
	logger *slog.Logger
}

// NewMemberRepository creates a new member repository
func NewMemberRepository(config *RepositoryConfig) repositories.MemberRepository {
	return &PostgresMemberRepository{
		pool:   config.Pool,
		tables: config.Tables,
		logger: config.Logger,
	}
}

func scanMember(row interface{ Scan(...any) error }, m *models.Member) error {
	return row.Scan(
		&m.ID,
		&m.UserID,
		&m.Company,
		&m.FirstName,
		&m.LastName,
		&m.Email,
		&m.Phone,
		&m.Specialties,
		&m.City,
		&m.State,
		&m.Website,
		&m.Certifications,
		&m.IsPublic,
		&m.HubSpotContactID,
		&m.CreatedAt,
		&m.UpdatedAt,
		&m.DeletedAt,
	)
}

// Create inserts a new member profile
func (r *PostgresMemberRepository) Create(ctx context.Context, m *models.Member) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, company, first_name, last_name, email, phone,
			specialties, city, state, website, certifications, is_public,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		m.UserID,
		m.Company,
		m.FirstName,
		m.LastName,
		m.Email,
		m.Phone,
		m.Specialties,
		m.City,
		m.State,
		m.Website,
		m.Certifications,
		m.IsPublic,
		m.CreatedAt,
		m.UpdatedAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)

	if err != nil {
		if IsPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("member with email '%s' already exists", m.Email),
				ResourceType: "member",
			}
		}
		return fmt.Errorf("create member: %w", err)
	}

	return nil
}

// GetByID retrieves a member by ID, soft-deleted rows excluded
func (r *PostgresMemberRepository) GetByID(ctx context.Context, id string) (*models.Member, error) {
	return r.getBy(ctx, "id", id)
}

// GetByUserID retrieves the member owned by an auth user
func (r *PostgresMemberRepository) GetByUserID(ctx context.Context, userID string) (*models.Member, error) {
	return r.getBy(ctx, "user_id", userID)
}

// GetByEmail retrieves a member by email (CRM natural key)
func (r *PostgresMemberRepository) GetByEmail(ctx context.Context, email string) (*models.Member, error) {
	return r.getBy(ctx, "email", email)
}

// GetByHubSpotContactID retrieves the member linked to a CRM contact
func (r *PostgresMemberRepository) GetByHubSpotContactID(ctx context.Context, contactID string) (*models.Member, error) {
	return r.getBy(ctx, "hubspot_contact_id", contactID)
}

func (r *PostgresMemberRepository) getBy(ctx context.Context, column, value string) (*models.Member, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s = $1 AND deleted_at IS NULL
	`, memberColumns, r.tables.Members, column)

	var m models.Member
	executor := GetExecutor(ctx, r.pool)
	err := scanMember(executor.QueryRow(ctx, query, value), &m)
	if err != nil {
		if IsPgNoRowsError(err) {
			return nil, fmt.Errorf("member %s=%s: %w", column, value, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get member: %w", err)
	}

	return &m, nil
}

// List searches the directory with optional filters, newest first
func (r *PostgresMemberRepository) List(ctx context.Context, filter *models.MemberFilter) ([]models.Member, error) {
	var (
		conds = []string{"deleted_at IS NULL"}
		args  []any
	)

	if !filter.IncludePrivate {
		conds = append(conds, "is_public = TRUE")
	}
	if filter.Query != "" {
		args = append(args, "%"+strings.ToLower(filter.Query)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(LOWER(company) LIKE $%d OR LOWER(first_name || ' ' || last_name) LIKE $%d)", n, n))
	}
	if filter.Specialty != "" {
		args = append(args, filter.Specialty)
		conds = append(conds, fmt.Sprintf("$%d = ANY(specialties)", len(args)))
	}
	if filter.City != "" {
		args = append(args, filter.City)
		conds = append(conds, fmt.Sprintf("LOWER(city) = LOWER($%d)", len(args)))
	}
	if filter.State != "" {
		args = append(args, filter.State)
		conds = append(conds, fmt.Sprintf("LOWER(state) = LOWER($%d)", len(args)))
	}

	args = append(args, filter.Limit)
	limitIdx := len(args)
	args = append(args, filter.Offset)
	offsetIdx := len(args)

	query := fmt.Sprintf(`
		SELECT %s
		FROM %s
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, memberColumns, r.tables.Members, strings.Join(conds, " AND "), limitIdx, offsetIdx)

	executor := GetExecutor(ctx, r.pool)
	rows, err := executor.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []models.Member{}
	for rows.Next() {
		var m models.Member
		if err := scanMember(rows, &m); err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate members: %w", err)
	}

	return members, nil
}

// Update rewrites the mutable profile columns
func (r *PostgresMemberRepository) Update(ctx context.Context, m *models.Member) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET company = $2, first_name = $3, last_name = $4, phone = $5,
			specialties = $6, city = $7, state = $8, website = $9,
			certifications = $10, is_public = $11, hubspot_contact_id = $12,
			updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query,
		m.ID,
		m.Company,
		m.FirstName,
		m.LastName,
		m.Phone,
		m.Specialties,
		m.City,
		m.State,
		m.Website,
		m.Certifications,
		m.IsPublic,
		m.HubSpotContactID,
	).Scan(&m.UpdatedAt)

	if err != nil {
		if IsPgNoRowsError(err) {
			return fmt.Errorf("member %s: %w", m.ID, domain.ErrNotFound)
		}
		return fmt.Errorf("update member: %w", err)
	}

	return nil
}

// SoftDelete stamps deleted_at
func (r *PostgresMemberRepository) SoftDelete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET deleted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
	`, r.tables.Members)

	executor := GetExecutor(ctx, r.pool)
	tag, err := executor.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s: %w", id, domain.ErrNotFound)
	}

	return nil
}
