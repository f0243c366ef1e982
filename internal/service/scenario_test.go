package service

import (
	"context"
	"fmt"
	"math"
	"sync"
	"testing"

	perrors "github.com/abgdnv/catalog/internal/errors"
	"github.com/abgdnv/catalog/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededService(t *testing.T, n int) (*Service, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := NewService(st, nil)
	for i := 1; i <= n; i++ {
		_, err := svc.Create(context.Background(), ProductCreateDto{Name: fmt.Sprintf("Product %02d", i), Price: float64(i)})
		require.NoError(t, err)
	}
	return svc, st
}

func TestCatalog_Pagination(t *testing.T) {
	svc, _ := seededService(t, 25)

	testCases := []struct {
		page      int32
		limit     int32
		wantLen   int
		wantFirst int64
	}{
		{page: 1, limit: 10, wantLen: 10, wantFirst: 1},
		{page: 2, limit: 10, wantLen: 10, wantFirst: 11},
		{page: 3, limit: 10, wantLen: 5, wantFirst: 21},
		{page: 4, limit: 10, wantLen: 0},
		{page: 2, limit: 7, wantLen: 7, wantFirst: 8},
		{page: 1, limit: math.MaxInt32, wantLen: 25, wantFirst: 1},
		{page: math.MaxInt32, limit: 10, wantLen: 0},
		{page: math.MaxInt32, limit: math.MaxInt32, wantLen: 0},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("page %d limit %d", tc.page, tc.limit), func(t *testing.T) {
			got, err := svc.FindAll(context.Background(), PaginationDto{Page: tc.page, Limit: tc.limit})

			require.NoError(t, err)
			require.Len(t, got.Data, tc.wantLen)
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirst, got.Data[0].ID)
			}
			assert.Equal(t, int64(25), got.Meta.Total)
			assert.Equal(t, tc.page, got.Meta.Page)
			assert.Equal(t, NewPaging(PaginationDto{Page: tc.page, Limit: tc.limit}).LastPage(25), got.Meta.LastPage)
		})
	}
}

func TestCatalog_PaginationMeta(t *testing.T) {
	svc, _ := seededService(t, 25)

	got, err := svc.FindAll(context.Background(), PaginationDto{Page: 1, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, PageMeta{Total: 25, Page: 1, LastPage: 3}, got.Meta)
}

func TestCatalog_RemoveHidesProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t, 10)

	removed, err := svc.Remove(ctx, 7)
	require.NoError(t, err)
	assert.False(t, removed.Available)

	_, err = svc.FindOne(ctx, 7)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	_, err = svc.Update(ctx, 7, ProductUpdateDto{Name: ptr("again")})
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)

	_, err = svc.Remove(ctx, 7)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound, "second remove must fail")

	page, err := svc.FindAll(ctx, PaginationDto{Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(9), page.Meta.Total)
	for _, p := range page.Data {
		assert.NotEqual(t, int64(7), p.ID)
	}
}

func TestCatalog_UpdateKeepsPathID(t *testing.T) {
	ctx := context.Background()
	svc, _ := seededService(t, 5)

	updated, err := svc.Update(ctx, 5, ProductUpdateDto{ID: ptr(int64(999)), Name: ptr("X")})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.ID)
	assert.Equal(t, "X", updated.Name)
	assert.Equal(t, float64(5), updated.Price)

	_, err = svc.FindOne(ctx, 999)
	assert.ErrorIs(t, err, perrors.ErrProductNotFound)
}

func TestCatalog_CreateDuplicateName(t *testing.T) {
	svc, _ := seededService(t, 1)

	_, err := svc.Create(context.Background(), ProductCreateDto{Name: "Product 01", Price: 1})

	assert.ErrorIs(t, err, perrors.ErrProductConflict)
}

// interleavingStore runs beforeUpdate between the existence check and the write.
type interleavingStore struct {
	store.ProductStore
	once         sync.Once
	beforeUpdate func()
}

func (s *interleavingStore) Update(ctx context.Context, id int64, params store.UpdateParams) (*store.Product, error) {
	s.once.Do(s.beforeUpdate)
	return s.ProductStore.Update(ctx, id, params)
}

func TestCatalog_UpdateRacesWithRemove(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	seeder := NewService(mem, nil)
	_, err := seeder.Create(ctx, ProductCreateDto{Name: "Racy", Price: 1})
	require.NoError(t, err)

	racing := &interleavingStore{ProductStore: mem}
	racing.beforeUpdate = func() {
		_, err := NewService(mem, nil).Remove(ctx, 1)
		require.NoError(t, err)
	}
	svc := NewService(racing, nil)

	// The existence check passes, a concurrent remove lands, and the write still applies
	// because updates are keyed by id alone.
	updated, err := svc.Update(ctx, 1, ProductUpdateDto{Price: ptr(2.0)})

	require.NoError(t, err)
	assert.Equal(t, 2.0, updated.Price)
	assert.False(t, updated.Available)
}
