package models

import (
	"database/sql"
	"time"
)

type Company struct {
	ID                string
	Slug              string
	Name              string
	Tier              string
	Status            string
	TrialEnd          sql.NullTime
	SubscriptionStart sql.NullTime
	SubscriptionEnd   sql.NullTime
	GraceEnd          sql.NullTime
	ReadOnly          bool
	MaxPlots          int
	MaxAgents         int
	MaxDailyRequests  int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type Sequence struct {
	TenantID  string
	Kind      string
	LastValue int64
	UpdatedAt time.Time
}

type UIDRecord struct {
	Display   string
	TenantID  string
	Kind      string
	Seq       int64
	CreatedAt time.Time
}

type AccessAudit struct {
	ID              int64
	AttemptedTenant sql.NullString
	ActualTenant    sql.NullString
	Operation       string
	Actor           sql.NullString
	Path            sql.NullString
	CreatedAt       time.Time
}
