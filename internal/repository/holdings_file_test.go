package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"FolioPulse/internal/domain/models"
)

func newStore(t *testing.T) *FileHoldingsStore {
	t.Helper()
	s, err := NewFileHoldingsStore(filepath.Join(t.TempDir(), "holdings.json"))
	require.NoError(t, err)
	return s
}

func sample(t *testing.T) models.Investment {
	t.Helper()
	inv, err := models.NewInvestment("", models.AssetStock, "Apple", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), 100, 1000, "medium")
	require.NoError(t, err)
	return inv
}

func TestStoreStartsEmpty(t *testing.T) {
	s := newStore(t)
	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAddAndGet(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Add(ctx, sample(t))
	require.NoError(t, err)
	require.NotEmpty(t, created.ID, "store mints an id")
	require.InDelta(t, 10.0, created.Quantity, 1e-12)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestAddRejectsInvalid(t *testing.T) {
	s := newStore(t)
	bad := sample(t)
	bad.EntryPrice = 0
	_, err := s.Add(context.Background(), bad)
	require.ErrorIs(t, err, models.ErrInvalidInvestment)
}

func TestReplace(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Add(ctx, sample(t))
	require.NoError(t, err)

	edited, err := created.WithEdit("Apple", models.AssetStock, created.EntryDate, 200, 1000, "low")
	require.NoError(t, err)
	require.NoError(t, s.Replace(ctx, edited))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	require.InDelta(t, 5.0, got.Quantity, 1e-12, "quantity re-derived on edit")
	require.Equal(t, "low", got.RiskLevel)
}

func TestReplaceUnknownID(t *testing.T) {
	s := newStore(t)
	inv := sample(t)
	inv.ID = "missing"
	require.ErrorIs(t, s.Replace(context.Background(), inv), ErrHoldingNotFound)
}

func TestDelete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	created, err := s.Add(ctx, sample(t))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, created.ID))

	_, err = s.Get(ctx, created.ID)
	require.ErrorIs(t, err, ErrHoldingNotFound)
	require.ErrorIs(t, s.Delete(ctx, created.ID), ErrHoldingNotFound)
}

func TestPersistenceAcrossReopens(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "holdings.json")
	ctx := context.Background()

	s1, err := NewFileHoldingsStore(path)
	require.NoError(t, err)
	created, err := s1.Add(ctx, sample(t))
	require.NoError(t, err)

	s2, err := NewFileHoldingsStore(path)
	require.NoError(t, err)
	got, err := s2.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.DisplayName, got.DisplayName)
}
