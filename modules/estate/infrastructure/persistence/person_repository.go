package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence/models"
	"github.com/plotline-hq/plotline/pkg/composables"
)

const personFindQuery = `
	SELECT id, tenant_id, uid, role, first_name, last_name, email, phone,
	       password_hash, created_at, updated_at
	FROM persons`

type PersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PersonRepository{}
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	persons, err := r.queryPersons(ctx, personFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, person.ErrNotFound
	}
	return persons[0], nil
}

func (r *PersonRepository) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	persons, err := r.queryPersons(ctx, personFindQuery+" WHERE tenant_id = $1 AND email = $2", tenantID.String(), email)
	if err != nil {
		return nil, err
	}
	if len(persons) == 0 {
		return nil, person.ErrNotFound
	}
	return persons[0], nil
}

func (r *PersonRepository) List(ctx context.Context, role person.Role) ([]*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryPersons(ctx, personFindQuery+" WHERE tenant_id = $1 AND role = $2 ORDER BY created_at", tenantID.String(), string(role))
}

func (r *PersonRepository) Count(ctx context.Context, role person.Role) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM persons WHERE tenant_id = $1 AND role = $2",
		tenantID.String(),
		string(role),
	).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "failed to count persons")
	}
	return count, nil
}

func (r *PersonRepository) Create(ctx context.Context, p *person.Person) (*person.Person, error) {
	if err := checkTenant(ctx, "persons.create", p.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO persons (
			id, tenant_id, uid, role, first_name, last_name, email, phone,
			password_hash, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		p.ID().String(),
		p.TenantID().String(),
		nullString(p.UID()),
		string(p.Role()),
		p.FirstName(),
		p.LastName(),
		nullString(p.Email()),
		nullString(p.Phone()),
		nullString(p.PasswordHash()),
		p.CreatedAt(),
		p.UpdatedAt(),
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, person.ErrEmailTaken
		}
		return nil, gerrors.Wrap(err, "failed to create person")
	}
	return r.GetByID(ctx, p.ID())
}

func (r *PersonRepository) Update(ctx context.Context, p *person.Person) (*person.Person, error) {
	if err := checkTenant(ctx, "persons.update", p.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE persons
		SET uid = $1, first_name = $2, last_name = $3, email = $4, phone = $5,
		    password_hash = $6, updated_at = $7
		WHERE tenant_id = $8 AND id = $9
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		nullString(p.UID()),
		p.FirstName(),
		p.LastName(),
		nullString(p.Email()),
		nullString(p.Phone()),
		nullString(p.PasswordHash()),
		p.UpdatedAt(),
		p.TenantID().String(),
		p.ID().String(),
	).Scan(&idStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, person.ErrNotFound
		}
		return nil, gerrors.Wrap(err, "failed to update person")
	}
	return r.GetByID(ctx, p.ID())
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM persons WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return gerrors.Wrap(err, "failed to delete person")
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func (r *PersonRepository) queryPersons(ctx context.Context, query string, args ...interface{}) ([]*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var persons []*person.Person
	for rows.Next() {
		var m models.Person
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.UID,
			&m.Role,
			&m.FirstName,
			&m.LastName,
			&m.Email,
			&m.Phone,
			&m.PasswordHash,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan person row")
		}
		entity, err := toDomainPerson(&m)
		if err != nil {
			return nil, err
		}
		// The predicate above already scopes the query. This catches a
		// repository bug before it becomes a data leak.
		if entity.TenantID() != tenantID {
			return nil, &tenant.IntegrityError{Op: "persons.query", Want: tenantID, Got: entity.TenantID()}
		}
		persons = append(persons, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return persons, nil
}

// checkTenant rejects writes whose row does not belong to the tenant in
// scope. Never auto-corrects the reference: a mismatch is a bug upstream.
func checkTenant(ctx context.Context, op string, got uuid.UUID) error {
	want, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	if got == uuid.Nil || got != want {
		return &tenant.IntegrityError{Op: op, Want: want, Got: got}
	}
	return nil
}
