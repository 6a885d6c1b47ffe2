package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Dan9191/hallbridge/internal/models"
)

// LaundryInput is the body of a new laundry request
type LaundryInput struct {
	Items []models.LaundryItem `json:"items" validate:"required,min=1,max=50,dive"`
}

// CreateLaundryRequest hands a batch of items to the laundry
func (s *Service) CreateLaundryRequest(ctx context.Context, actor models.Identity, in LaundryInput) (*models.LaundryRequest, error) {
	if err := requireRole(actor, models.RoleStudent); err != nil {
		return nil, err
	}
	if err := s.validateStruct(in); err != nil {
		return nil, err
	}
	items := make([]models.LaundryItem, len(in.Items))
	for i, it := range in.Items {
		items[i] = models.LaundryItem{ItemType: strings.ToLower(strings.TrimSpace(it.ItemType)), Quantity: it.Quantity}
	}
	now := s.now().UTC()
	req := &models.LaundryRequest{
		ID:        uuid.NewString(),
		StudentID: actor.UserID,
		Items:     items,
		Status:    models.LaundryPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateLaundryRequest(ctx, req); err != nil {
		return nil, err
	}
	s.log.Infof("Laundry request %s created by %s with %d items", req.ID, actor.UserID, len(items))
	return req, nil
}

// AdvanceLaundry moves a request to status, which must be the next step of its progression
func (s *Service) AdvanceLaundry(ctx context.Context, actor models.Identity, id, status string) (*models.LaundryRequest, error) {
	if err := requireRole(actor, models.RoleStaff, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := checkID("laundry request", id); err != nil {
		return nil, err
	}
	req, err := s.store.FindLaundryRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	next := models.NextLaundryStatus(req.Status)
	if next == "" || next != status {
		return nil, fmt.Errorf("cannot move laundry from %s to %s: %w", req.Status, status, models.ErrInvalidTransition)
	}
	if err := s.store.AdvanceLaundryStatus(ctx, id, req.Status, next, s.now().UTC()); err != nil {
		if errors.Is(err, models.ErrInvalidTransition) {
			return nil, fmt.Errorf("laundry request %s changed concurrently: %w", id, err)
		}
		return nil, err
	}
	return s.store.FindLaundryRequest(ctx, id)
}

// ListLaundry returns the caller's requests, or all requests for staff
func (s *Service) ListLaundry(ctx context.Context, actor models.Identity) ([]models.LaundryRequest, error) {
	switch {
	case actor.Is(models.RoleStudent):
		return s.store.ListLaundryRequests(ctx, actor.UserID)
	case actor.Is(models.RoleStaff, models.RoleAdmin):
		return s.store.ListLaundryRequests(ctx, "")
	}
	return nil, models.ErrForbidden
}
