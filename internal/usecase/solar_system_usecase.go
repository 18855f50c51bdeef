package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type SolarSystemUsecase struct {
	systemRepo repo.SolarSystemRepository
}

func NewSolarSystemUsecase(systemRepo repo.SolarSystemRepository) *SolarSystemUsecase {
	return &SolarSystemUsecase{systemRepo: systemRepo}
}

type ListSystemsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *int64
	MaxPrice *int64
	MinWatts *int64
	Sort     string
}

type SystemListOutput struct {
	Items []model.SolarSystem `json:"items"`
	Total int64               `json:"total"`
	Page  int                 `json:"page"`
	Limit int                 `json:"limit"`
}

func (u *SolarSystemUsecase) ListPublicSystems(ctx context.Context, in ListSystemsInput) (SystemListOutput, error) {
	if in.Page < 1 {
		return SystemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return SystemListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}

	items, total, err := u.systemRepo.ListPublic(ctx, repo.SolarSystemListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        in.Q,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		MinWatts: in.MinWatts,
		Sort:     in.Sort,
	})
	if err != nil {
		return SystemListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return SystemListOutput{Items: items, Total: total, Page: in.Page, Limit: in.Limit}, nil
}

func (u *SolarSystemUsecase) GetSystemDetail(ctx context.Context, id int64) (model.SolarSystem, error) {
	if id <= 0 {
		return model.SolarSystem{}, NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	s, err := u.systemRepo.FindByID(ctx, id)
	if errors.Is(err, repo.ErrNotFound) {
		return model.SolarSystem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.SolarSystem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !s.IsActive {
		return model.SolarSystem{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return s, nil
}

type AdminSystemInput struct {
	Name              string
	Description       string
	TotalCapacityW    int64
	ComponentsSummary string
	Price             int64
	IsActive          bool
}

func (in AdminSystemInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	if in.TotalCapacityW <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid total_capacity_w")
	}
	if in.Price < 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	return nil
}

func (u *SolarSystemUsecase) CreateSystem(ctx context.Context, adminID int64, in AdminSystemInput) (model.SolarSystem, error) {
	if adminID <= 0 {
		return model.SolarSystem{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if err := in.validate(); err != nil {
		return model.SolarSystem{}, err
	}

	created, err := u.systemRepo.Create(ctx, model.SolarSystem{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		TotalCapacityW:    in.TotalCapacityW,
		ComponentsSummary: in.ComponentsSummary,
		Price:             in.Price,
		IsActive:          in.IsActive,
	})
	if err != nil {
		return model.SolarSystem{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return created, nil
}

func (u *SolarSystemUsecase) UpdateSystem(ctx context.Context, adminID int64, systemID int64, in AdminSystemInput) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if systemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if err := in.validate(); err != nil {
		return err
	}

	s, err := u.systemRepo.FindByID(ctx, systemID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	s.Name = strings.TrimSpace(in.Name)
	s.Description = in.Description
	s.TotalCapacityW = in.TotalCapacityW
	s.ComponentsSummary = in.ComponentsSummary
	s.Price = in.Price
	s.IsActive = in.IsActive

	if err := u.systemRepo.Update(ctx, s); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *SolarSystemUsecase) DeleteSystem(ctx context.Context, adminID int64, systemID int64) error {
	if adminID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if systemID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	if err := u.systemRepo.SoftDelete(ctx, systemID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}
