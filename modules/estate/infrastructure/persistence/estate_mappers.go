package persistence

import (
	"database/sql"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence/models"
)

func toDomainPerson(m *models.Person) (*person.Person, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid person id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid person tenant id")
	}
	return person.New(
		tenantID,
		person.Role(m.Role),
		m.FirstName,
		m.LastName,
		person.WithID(id),
		person.WithUID(m.UID.String),
		person.WithEmail(m.Email.String),
		person.WithPhone(m.Phone.String),
		person.WithPasswordHash(m.PasswordHash.String),
		person.WithCreatedAt(m.CreatedAt),
		person.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainPlot(m *models.Plot) (*plot.Plot, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid plot id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid plot tenant id")
	}
	return plot.New(
		tenantID,
		m.Estate,
		m.Number,
		m.AreaSqm,
		m.Price,
		plot.WithID(id),
		plot.WithUID(m.UID.String),
		plot.WithStatus(plot.Status(m.Status)),
		plot.WithCreatedAt(m.CreatedAt),
		plot.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func toDomainAllocation(m *models.Allocation) (*allocation.Allocation, error) {
	id, err := uuid.Parse(m.ID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid allocation id")
	}
	tenantID, err := uuid.Parse(m.TenantID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid allocation tenant id")
	}
	plotID, err := uuid.Parse(m.PlotID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid allocation plot id")
	}
	clientID, err := uuid.Parse(m.ClientID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid allocation client id")
	}
	marketerID, err := uuid.Parse(m.MarketerID)
	if err != nil {
		return nil, gerrors.Wrap(err, "invalid allocation marketer id")
	}
	return allocation.New(
		tenantID,
		plotID,
		clientID,
		marketerID,
		m.Price,
		allocation.WithID(id),
		allocation.WithStatus(allocation.Status(m.Status)),
		allocation.WithCreatedAt(m.CreatedAt),
		allocation.WithUpdatedAt(m.UpdatedAt),
	), nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
