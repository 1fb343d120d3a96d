package controllers

import (
	"time"

	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
)

type createPersonRequest struct {
	Role      string `json:"role" validate:"required,oneof=client marketer"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Email     string `json:"email" validate:"omitempty,email"`
	Phone     string `json:"phone" validate:"omitempty"`
	Password  string `json:"password" validate:"omitempty,min=8"`
}

type personResponse struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Role      string    `json:"role"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func toPersonResponse(p *person.Person) personResponse {
	return personResponse{
		ID:        p.ID().String(),
		UID:       p.UID(),
		Role:      string(p.Role()),
		FirstName: p.FirstName(),
		LastName:  p.LastName(),
		Email:     p.Email(),
		Phone:     p.Phone(),
		CreatedAt: p.CreatedAt(),
	}
}

type createPlotRequest struct {
	Estate  string  `json:"estate" validate:"required"`
	Number  string  `json:"number" validate:"required"`
	AreaSqm float64 `json:"area_sqm" validate:"required,gt=0"`
	Price   int64   `json:"price" validate:"required,gt=0"`
}

type plotResponse struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Estate    string    `json:"estate"`
	Number    string    `json:"number"`
	AreaSqm   float64   `json:"area_sqm"`
	Price     int64     `json:"price"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toPlotResponse(p *plot.Plot) plotResponse {
	return plotResponse{
		ID:        p.ID().String(),
		UID:       p.UID(),
		Estate:    p.Estate(),
		Number:    p.Number(),
		AreaSqm:   p.AreaSqm(),
		Price:     p.Price(),
		Status:    string(p.Status()),
		CreatedAt: p.CreatedAt(),
	}
}

type createAllocationRequest struct {
	PlotID     string `json:"plot_id" validate:"required,uuid"`
	ClientID   string `json:"client_id" validate:"required,uuid"`
	MarketerID string `json:"marketer_id" validate:"required,uuid"`
	Price      int64  `json:"price" validate:"required,gt=0"`
}

type allocationResponse struct {
	ID         string    `json:"id"`
	PlotID     string    `json:"plot_id"`
	ClientID   string    `json:"client_id"`
	MarketerID string    `json:"marketer_id"`
	Price      int64     `json:"price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
}

func toAllocationResponse(a *allocation.Allocation) allocationResponse {
	return allocationResponse{
		ID:         a.ID().String(),
		PlotID:     a.PlotID().String(),
		ClientID:   a.ClientID().String(),
		MarketerID: a.MarketerID().String(),
		Price:      a.Price(),
		Status:     string(a.Status()),
		CreatedAt:  a.CreatedAt(),
	}
}
