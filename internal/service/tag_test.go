package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/backoffice/internal/domain"
	"github.com/pkordes/backoffice/internal/service"
	"github.com/pkordes/backoffice/internal/validate"
)

func newTagService(tags *mockTagRepo, customers *mockCustomerRepo) *service.TagService {
	return service.NewTagService(tags, customers, validate.New())
}

func customerExists(ok bool) *mockCustomerRepo {
	return &mockCustomerRepo{
		exists: func(_ context.Context, _ uuid.UUID) (bool, error) { return ok, nil },
	}
}

// allKnown makes ExistingIDs echo its input.
func allKnown(_ context.Context, ids []uuid.UUID) ([]uuid.UUID, error) {
	return ids, nil
}

// ---- Create / Rename -------------------------------------------------------

func TestTagService_Create_TrimsName(t *testing.T) {
	var captured string
	svc := newTagService(&mockTagRepo{
		create: func(_ context.Context, name string) (domain.Tag, error) {
			captured = name
			return domain.Tag{ID: uuid.New(), Name: name}, nil
		},
	}, &mockCustomerRepo{})

	_, err := svc.Create(context.Background(), "  VIP  ")

	require.NoError(t, err)
	assert.Equal(t, "VIP", captured)
}

func TestTagService_Create_RejectsBlankAndLong(t *testing.T) {
	svc := newTagService(&mockTagRepo{}, &mockCustomerRepo{})

	_, err := svc.Create(context.Background(), "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.Create(context.Background(), strings.Repeat("あ", 51))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTagService_Create_FiftyRunesAccepted(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		create: func(_ context.Context, name string) (domain.Tag, error) { return domain.Tag{Name: name}, nil },
	}, &mockCustomerRepo{})

	_, err := svc.Create(context.Background(), strings.Repeat("あ", 50))

	assert.NoError(t, err)
}

func TestTagService_Rename_Conflict(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		rename: func(_ context.Context, _ uuid.UUID, _ string) (domain.Tag, error) {
			return domain.Tag{}, domain.ErrConflict
		},
	}, &mockCustomerRepo{})

	_, err := svc.Rename(context.Background(), uuid.New(), "taken")

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTagService_Delete_ReturnsUnlinkedCount(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		delete: func(_ context.Context, _ uuid.UUID) (int64, error) { return 3, nil },
	}, &mockCustomerRepo{})

	n, err := svc.Delete(context.Background(), uuid.New())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

// ---- ListForCustomer -------------------------------------------------------

func TestTagService_ListForCustomer_MissingCustomer(t *testing.T) {
	svc := newTagService(&mockTagRepo{}, customerExists(false))

	_, err := svc.ListForCustomer(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Replace ---------------------------------------------------------------

func TestTagService_Replace_DedupesAndIsIdempotent(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	linked := map[uuid.UUID][]uuid.UUID{}
	var calls [][]uuid.UUID

	svc := newTagService(&mockTagRepo{
		existingIDs: allKnown,
		replaceForCustomer: func(_ context.Context, cid uuid.UUID, ids []uuid.UUID) error {
			calls = append(calls, ids)
			linked[cid] = ids
			return nil
		},
		listByCustomer: func(_ context.Context, cid uuid.UUID) ([]domain.Tag, error) {
			out := []domain.Tag{}
			for _, id := range linked[cid] {
				out = append(out, domain.Tag{ID: id})
			}
			return out, nil
		},
	}, customerExists(true))

	cid := uuid.New()
	first, err := svc.Replace(context.Background(), cid, []uuid.UUID{a, b, a})
	require.NoError(t, err)
	second, err := svc.Replace(context.Background(), cid, []uuid.UUID{a, b, a})
	require.NoError(t, err)

	assert.Equal(t, []uuid.UUID{a, b}, calls[0], "duplicates collapsed, order kept")
	assert.Equal(t, first, second)
	assert.Len(t, second, 2)
}

func TestTagService_Replace_EmptyClears(t *testing.T) {
	var got []uuid.UUID
	svc := newTagService(&mockTagRepo{
		replaceForCustomer: func(_ context.Context, _ uuid.UUID, ids []uuid.UUID) error {
			got = ids
			return nil
		},
		listByCustomer: func(_ context.Context, _ uuid.UUID) ([]domain.Tag, error) { return []domain.Tag{}, nil },
	}, customerExists(true))

	tags, err := svc.Replace(context.Background(), uuid.New(), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, tags)
}

func TestTagService_Replace_UnknownTagIDs(t *testing.T) {
	known, unknown := uuid.New(), uuid.New()
	svc := newTagService(&mockTagRepo{
		existingIDs: func(_ context.Context, _ []uuid.UUID) ([]uuid.UUID, error) { return []uuid.UUID{known}, nil },
		replaceForCustomer: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) error {
			t.Fatal("must not write when a tag id is unknown")
			return nil
		},
	}, customerExists(true))

	_, err := svc.Replace(context.Background(), uuid.New(), []uuid.UUID{known, unknown})

	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), unknown.String())
	assert.NotContains(t, err.Error(), known.String())
}

func TestTagService_Replace_MissingCustomer(t *testing.T) {
	svc := newTagService(&mockTagRepo{}, customerExists(false))

	_, err := svc.Replace(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ---- Add -------------------------------------------------------------------

func TestTagService_Add_NothingNewIsConflict(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		existingIDs:   allKnown,
		addToCustomer: func(_ context.Context, _ uuid.UUID, _ []uuid.UUID) (int64, error) { return 0, nil },
	}, customerExists(true))

	_, err := svc.Add(context.Background(), uuid.New(), []uuid.UUID{uuid.New()})

	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestTagService_Add_ReturnsResultingList(t *testing.T) {
	a := uuid.New()
	svc := newTagService(&mockTagRepo{
		existingIDs:   allKnown,
		addToCustomer: func(_ context.Context, _ uuid.UUID, ids []uuid.UUID) (int64, error) { return int64(len(ids)), nil },
		listByCustomer: func(_ context.Context, _ uuid.UUID) ([]domain.Tag, error) {
			return []domain.Tag{{ID: uuid.New()}, {ID: a}}, nil
		},
	}, customerExists(true))

	tags, err := svc.Add(context.Background(), uuid.New(), []uuid.UUID{a})

	require.NoError(t, err)
	assert.Len(t, tags, 2)
}

func TestTagService_Add_EmptyInput(t *testing.T) {
	svc := newTagService(&mockTagRepo{}, customerExists(true))

	_, err := svc.Add(context.Background(), uuid.New(), nil)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

// ---- Remove ----------------------------------------------------------------

func TestTagService_Remove_NotAttached(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		removeFromCustomer: func(_ context.Context, _, _ uuid.UUID) error { return domain.ErrNotFound },
	}, customerExists(true))

	err := svc.Remove(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrTagNotAttached)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTagService_Remove_MissingCustomerIsNotTagError(t *testing.T) {
	svc := newTagService(&mockTagRepo{
		removeFromCustomer: func(_ context.Context, _, _ uuid.UUID) error {
			t.Fatal("association must not be touched")
			return nil
		},
	}, customerExists(false))

	err := svc.Remove(context.Background(), uuid.New(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrTagNotAttached)
}
