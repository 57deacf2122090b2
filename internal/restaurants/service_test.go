package restaurants

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tablemate-app/tablemate-backend/internal/owners"
	"github.com/tablemate-app/tablemate-backend/pkg/db/models"
	pkgerrors "github.com/tablemate-app/tablemate-backend/pkg/errors"
)

type stubRestaurantsRepo struct {
	restaurants map[uuid.UUID]*models.Restaurant
	deleted     []uuid.UUID
}

func newStubRestaurantsRepo() *stubRestaurantsRepo {
	return &stubRestaurantsRepo{restaurants: map[uuid.UUID]*models.Restaurant{}}
}

func (s *stubRestaurantsRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubRestaurantsRepo) Create(_ context.Context, dto CreateRestaurantDTO) (*models.Restaurant, error) {
	restaurant := dto.ToModel()
	restaurant.ID = uuid.New()
	s.restaurants[restaurant.ID] = restaurant
	return restaurant, nil
}

func (s *stubRestaurantsRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Restaurant, error) {
	if restaurant, ok := s.restaurants[id]; ok {
		return restaurant, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRestaurantsRepo) List(_ context.Context) ([]models.Restaurant, error) {
	out := make([]models.Restaurant, 0, len(s.restaurants))
	for _, restaurant := range s.restaurants {
		out = append(out, *restaurant)
	}
	return out, nil
}

func (s *stubRestaurantsRepo) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Restaurant, error) {
	out := []models.Restaurant{}
	for _, restaurant := range s.restaurants {
		if restaurant.OwnerID == ownerID {
			out = append(out, *restaurant)
		}
	}
	return out, nil
}

func (s *stubRestaurantsRepo) Update(_ context.Context, restaurant *models.Restaurant) error {
	s.restaurants[restaurant.ID] = restaurant
	return nil
}

func (s *stubRestaurantsRepo) Delete(_ context.Context, id uuid.UUID) error {
	s.deleted = append(s.deleted, id)
	delete(s.restaurants, id)
	return nil
}

type stubOwnersRepo struct {
	owners map[uuid.UUID]*models.Owner
}

func newStubOwnersRepo() *stubOwnersRepo {
	return &stubOwnersRepo{owners: map[uuid.UUID]*models.Owner{}}
}

func (s *stubOwnersRepo) WithTx(_ *gorm.DB) owners.Repository { return s }

func (s *stubOwnersRepo) Create(_ context.Context, dto owners.CreateOwnerDTO) (*models.Owner, error) {
	owner := dto.ToModel()
	owner.ID = uuid.New()
	s.owners[owner.ID] = owner
	return owner, nil
}

func (s *stubOwnersRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Owner, error) {
	if owner, ok := s.owners[id]; ok {
		return owner, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOwnersRepo) FindByEmail(_ context.Context, email string) (*models.Owner, error) {
	for _, owner := range s.owners {
		if owner.Email == email {
			return owner, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubOwnersRepo) Update(_ context.Context, owner *models.Owner) error {
	s.owners[owner.ID] = owner
	return nil
}

func (s *stubOwnersRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(s.owners, id)
	return nil
}

func newService(t *testing.T, restaurantsRepo *stubRestaurantsRepo, ownersRepo *stubOwnersRepo) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Restaurants: restaurantsRepo,
		Owners:      ownersRepo,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func expectCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, appErr.Code(), err)
	}
}

func TestCreateRequiresOwnerProfile(t *testing.T) {
	svc := newService(t, newStubRestaurantsRepo(), newStubOwnersRepo())

	_, err := svc.Create(context.Background(), uuid.New(), CreateRestaurantRequest{Name: "Casa Roma"})
	expectCode(t, err, pkgerrors.CodeNotFound)
}

func TestCreateDefaultsMinOrderToZero(t *testing.T) {
	restaurantsRepo := newStubRestaurantsRepo()
	ownersRepo := newStubOwnersRepo()
	owner := &models.Owner{ID: uuid.New(), Email: "owner@example.com", Name: "Pat"}
	ownersRepo.owners[owner.ID] = owner
	svc := newService(t, restaurantsRepo, ownersRepo)

	resp, err := svc.Create(context.Background(), owner.ID, CreateRestaurantRequest{Name: "Casa Roma"})
	if err != nil {
		t.Fatalf("create restaurant: %v", err)
	}
	if !resp.MinOrderAmount.Equal(decimal.Zero) {
		t.Fatalf("expected zero min order, got %s", resp.MinOrderAmount)
	}
	if resp.OwnerID != owner.ID {
		t.Fatalf("restaurant must belong to the owner")
	}
}

func TestCreateRejectsNegativeMinOrder(t *testing.T) {
	ownersRepo := newStubOwnersRepo()
	owner := &models.Owner{ID: uuid.New(), Email: "owner@example.com", Name: "Pat"}
	ownersRepo.owners[owner.ID] = owner
	svc := newService(t, newStubRestaurantsRepo(), ownersRepo)

	negative := decimal.NewFromInt(-5)
	_, err := svc.Create(context.Background(), owner.ID, CreateRestaurantRequest{
		Name:           "Casa Roma",
		MinOrderAmount: &negative,
	})
	expectCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateMinOrderAmount(t *testing.T) {
	restaurantsRepo := newStubRestaurantsRepo()
	restaurant := &models.Restaurant{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		Name:           "Casa Roma",
		MinOrderAmount: decimal.Zero,
	}
	restaurantsRepo.restaurants[restaurant.ID] = restaurant
	svc := newService(t, restaurantsRepo, newStubOwnersRepo())

	amount := decimal.RequireFromString("24.50")
	resp, err := svc.Update(context.Background(), restaurant.ID, UpdateRestaurantRequest{
		MinOrderAmount: &amount,
	})
	if err != nil {
		t.Fatalf("update restaurant: %v", err)
	}
	if !resp.MinOrderAmount.Equal(amount) {
		t.Fatalf("expected min order %s, got %s", amount, resp.MinOrderAmount)
	}
}

func TestListReturnsAllRestaurants(t *testing.T) {
	restaurantsRepo := newStubRestaurantsRepo()
	for i := 0; i < 3; i++ {
		id := uuid.New()
		restaurantsRepo.restaurants[id] = &models.Restaurant{ID: id, OwnerID: uuid.New(), Name: "R"}
	}
	svc := newService(t, restaurantsRepo, newStubOwnersRepo())

	rows, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list restaurants: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected 3 restaurants, got %d", len(rows))
	}
}

func TestDeleteUnknownRestaurant(t *testing.T) {
	svc := newService(t, newStubRestaurantsRepo(), newStubOwnersRepo())
	err := svc.Delete(context.Background(), uuid.New())
	expectCode(t, err, pkgerrors.CodeNotFound)
}
