package models

import (
	"database/sql"
	"time"
)

type Person struct {
	ID           string
	TenantID     string
	UID          sql.NullString
	Role         string
	FirstName    string
	LastName     string
	Email        sql.NullString
	Phone        sql.NullString
	PasswordHash sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Plot struct {
	ID        string
	TenantID  string
	UID       sql.NullString
	Estate    string
	Number    string
	AreaSqm   float64
	Price     int64
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Allocation struct {
	ID         string
	TenantID   string
	PlotID     string
	ClientID   string
	MarketerID string
	Price      int64
	Status     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
