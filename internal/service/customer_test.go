package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/service"
	"github.com/pkordes/backoffice/internal/validate"
)

func newCustomerService(customers *mockCustomerRepo, tags *mockTagRepo) *service.CustomerService {
	return service.NewCustomerService(customers, tags, validate.New(), discardLogger())
}

func ptr[T any](v T) *T { return &v }

// ---- Create ----------------------------------------------------------------

func TestCustomerService_Create_OK(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		create: func(_ context.Context, c domain.Customer) (domain.Customer, error) {
			c.ID = uuid.New()
			return c, nil
		},
	}, &mockTagRepo{})

	got, err := svc.Create(context.Background(), domain.Customer{
		CustomerType: domain.CustomerTypePersonal,
		Name:         "山田 太郎",
		Phone:        "090-1234-5678",
	})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, got.ID)
	assert.NotNil(t, got.Tags)
}

func TestCustomerService_Create_CompanyNeedsCompanyName(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{}, &mockTagRepo{})

	_, err := svc.Create(context.Background(), domain.Customer{
		CustomerType: domain.CustomerTypeCompany,
		Name:         "担当者",
	})

	require.ErrorIs(t, err, domain.ErrValidation)
	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "company_name", fe[0].Field)
}

func TestCustomerService_Create_InvalidFields(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{}, &mockTagRepo{})

	_, err := svc.Create(context.Background(), domain.Customer{
		CustomerType: "alien",
		PostalCode:   "12-345",
		Email:        "broken",
	})

	var fe domain.FieldErrors
	require.ErrorAs(t, err, &fe)
	fields := make([]string, len(fe))
	for i, f := range fe {
		fields[i] = f.Field
	}
	assert.ElementsMatch(t, []string{"customer_type", "name", "postal_code", "email"}, fields)
}

// ---- Update ----------------------------------------------------------------

func TestCustomerService_Update_PartialPatch(t *testing.T) {
	id := uuid.New()
	existing := domain.Customer{
		ID:           id,
		CustomerType: domain.CustomerTypePersonal,
		Name:         "Before",
		Email:        "keep@example.com",
	}
	var saved domain.Customer
	svc := newCustomerService(&mockCustomerRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Customer, error) { return existing, nil },
		update: func(_ context.Context, c domain.Customer) (domain.Customer, error) {
			saved = c
			return c, nil
		},
	}, &mockTagRepo{
		listByCustomer: func(_ context.Context, _ uuid.UUID) ([]domain.Tag, error) { return []domain.Tag{}, nil },
	})

	_, err := svc.Update(context.Background(), id, domain.CustomerPatch{Name: ptr("After")})

	require.NoError(t, err)
	assert.Equal(t, "After", saved.Name)
	assert.Equal(t, "keep@example.com", saved.Email, "untouched fields survive")
}

func TestCustomerService_Update_MergedResultIsValidated(t *testing.T) {
	existing := domain.Customer{CustomerType: domain.CustomerTypePersonal, Name: "Solo"}
	svc := newCustomerService(&mockCustomerRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Customer, error) { return existing, nil },
	}, &mockTagRepo{})

	company := domain.CustomerTypeCompany
	_, err := svc.Update(context.Background(), uuid.New(), domain.CustomerPatch{CustomerType: &company})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCustomerService_Update_NotFound(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		getByID: func(_ context.Context, _ uuid.UUID) (domain.Customer, error) { return domain.Customer{}, domain.ErrNotFound },
	}, &mockTagRepo{})

	_, err := svc.Update(context.Background(), uuid.New(), domain.CustomerPatch{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Search ----------------------------------------------------------------

func TestCustomerService_Search_TagFilterResolvesToIDs(t *testing.T) {
	tagA, tagB := uuid.New(), uuid.New()
	c1, c2 := uuid.New(), uuid.New()
	var gotFilter domain.CustomerFilter
	svc := newCustomerService(&mockCustomerRepo{
		count: func(_ context.Context, f domain.CustomerFilter) (int64, error) {
			gotFilter = f
			return 2, nil
		},
		search: func(_ context.Context, f domain.CustomerFilter, _ domain.PaginationParams, _ string, _ bool) ([]domain.Customer, error) {
			assert.Equal(t, gotFilter, f, "count and page share one filter")
			return []domain.Customer{{ID: c1}, {ID: c2}}, nil
		},
	}, &mockTagRepo{
		customerIDsWithAnyTag: func(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
			assert.Equal(t, []uuid.UUID{tagA, tagB}, ids)
			return []uuid.UUID{c1, c2}, nil
		},
		listByCustomers: func(_ context.Context, ids []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
			return map[uuid.UUID][]domain.Tag{c1: {{ID: tagA, Name: "A"}}}, nil
		},
	})

	params := domain.NewCustomerSearchParams("ＡＢＣ　商事", "", "", []uuid.UUID{tagA, tagB}, domain.NewPaginationParams(nil, nil), "", "")
	page, err := svc.Search(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{c1, c2}, gotFilter.IDs)
	assert.Equal(t, []string{"ABC", "商事"}, gotFilter.Terms)
	assert.Equal(t, int64(2), page.TotalCount)
	assert.Equal(t, 1, page.TotalPages)
	require.Len(t, page.Data, 2)
	assert.Len(t, page.Data[0].Tags, 1)
	assert.NotNil(t, page.Data[1].Tags)
	assert.Empty(t, page.Data[1].Tags)
}

func TestCustomerService_Search_EmptyTagResolutionShortCircuits(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		count: func(_ context.Context, _ domain.CustomerFilter) (int64, error) {
			t.Fatal("customers must not be queried")
			return 0, nil
		},
	}, &mockTagRepo{
		customerIDsWithAnyTag: func(_ context.Context, _ []uuid.UUID) ([]uuid.UUID, error) { return nil, nil },
	})

	params := domain.NewCustomerSearchParams("", "", "", []uuid.UUID{uuid.New()}, domain.NewPaginationParams(nil, nil), "", "")
	page, err := svc.Search(context.Background(), params)

	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.NotNil(t, page.Data)
	assert.Zero(t, page.TotalCount)
	assert.Zero(t, page.TotalPages)
}

func TestCustomerService_Search_UnusableFilterMatchesNothing(t *testing.T) {
	untouched := &mockCustomerRepo{
		count: func(_ context.Context, _ domain.CustomerFilter) (int64, error) {
			t.Fatal("customers must not be queried")
			return 0, nil
		},
	}
	noTags := &mockTagRepo{
		customerIDsWithAnyTag: func(_ context.Context, _ []uuid.UUID) ([]uuid.UUID, error) {
			t.Fatal("tags must not be resolved")
			return nil, nil
		},
	}
	svc := newCustomerService(untouched, noTags)

	tagsSupplied := domain.NewCustomerSearchParams("", "", "", nil, domain.NewPaginationParams(nil, nil), "", "")
	tagsSupplied.TagFilter = true
	unknownType := domain.NewCustomerSearchParams("", "bogus", "", nil, domain.NewPaginationParams(nil, nil), "", "")

	for name, params := range map[string]domain.CustomerSearchParams{
		"tag filter without ids": tagsSupplied,
		"unknown customer type":  unknownType,
	} {
		t.Run(name, func(t *testing.T) {
			page, err := svc.Search(context.Background(), params)

			require.NoError(t, err)
			assert.Equal(t, []domain.Customer{}, page.Data)
			assert.Zero(t, page.TotalCount)
		})
	}
}

func TestCustomerService_Search_TagFetchFailureDegrades(t *testing.T) {
	id := uuid.New()
	svc := newCustomerService(&mockCustomerRepo{
		count: func(_ context.Context, _ domain.CustomerFilter) (int64, error) { return 1, nil },
		search: func(_ context.Context, _ domain.CustomerFilter, _ domain.PaginationParams, _ string, _ bool) ([]domain.Customer, error) {
			return []domain.Customer{{ID: id, Name: "Kept"}}, nil
		},
	}, &mockTagRepo{
		listByCustomers: func(_ context.Context, _ []uuid.UUID) (map[uuid.UUID][]domain.Tag, error) {
			return nil, errors.New("connection reset")
		},
	})

	page, err := svc.Search(context.Background(), domain.NewCustomerSearchParams("", "", "", nil, domain.NewPaginationParams(nil, nil), "", ""))

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Kept", page.Data[0].Name)
	assert.Equal(t, []domain.Tag{}, page.Data[0].Tags)
}

func TestCustomerService_Search_NoTagFilterLeavesIDsNil(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		count: func(_ context.Context, f domain.CustomerFilter) (int64, error) {
			assert.Nil(t, f.IDs)
			assert.Empty(t, f.Terms)
			return 0, nil
		},
		search: func(_ context.Context, _ domain.CustomerFilter, _ domain.PaginationParams, sortBy string, desc bool) ([]domain.Customer, error) {
			assert.Equal(t, "created_at", sortBy)
			assert.True(t, desc)
			return nil, nil
		},
	}, &mockTagRepo{})

	params := domain.NewCustomerSearchParams("   ", "", "", nil, domain.NewPaginationParams(nil, nil), "drop table", "")
	page, err := svc.Search(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, []domain.Customer{}, page.Data)
}

func TestCustomerService_Search_StoreError(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		count: func(_ context.Context, _ domain.CustomerFilter) (int64, error) { return 0, errors.New("db down") },
	}, &mockTagRepo{})

	_, err := svc.Search(context.Background(), domain.NewCustomerSearchParams("", "", "", nil, domain.NewPaginationParams(nil, nil), "", ""))

	assert.Error(t, err)
}

// ---- Delete / Restore ------------------------------------------------------

func TestCustomerService_Delete_PropagatesNotFound(t *testing.T) {
	svc := newCustomerService(&mockCustomerRepo{
		softDelete: func(_ context.Context, _ uuid.UUID) error { return domain.ErrNotFound },
	}, &mockTagRepo{})

	err := svc.Delete(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCustomerService_Restore_IncludesTags(t *testing.T) {
	id := uuid.New()
	svc := newCustomerService(&mockCustomerRepo{
		restore: func(_ context.Context, _ uuid.UUID) (domain.Customer, error) { return domain.Customer{ID: id}, nil },
	}, &mockTagRepo{
		listByCustomer: func(_ context.Context, _ uuid.UUID) ([]domain.Tag, error) {
			return []domain.Tag{{Name: "VIP"}}, nil
		},
	})

	got, err := svc.Restore(context.Background(), id)

	require.NoError(t, err)
	assert.Equal(t, "VIP", got.Tags[0].Name)
}
