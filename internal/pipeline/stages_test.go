package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hefangdw/invhealth/internal/domain"
)

type stubAvailabilityStore struct {
	avail domain.FactAvailability
	err   error
}

func (s *stubAvailabilityStore) InventorySnapshot(ctx context.Context, dateID int) ([]domain.InventoryFact, error) {
	return nil, nil
}

func (s *stubAvailabilityStore) SalesWindow(ctx context.Context, dateID int) (map[int64]domain.SalesFact, error) {
	return nil, nil
}

func (s *stubAvailabilityStore) Products(ctx context.Context) (map[int64]domain.Product, error) {
	return nil, nil
}

func (s *stubAvailabilityStore) FactAvailability(ctx context.Context, dateID int) (domain.FactAvailability, error) {
	return s.avail, s.err
}

func TestFactAvailabilityStage(t *testing.T) {
	cases := []struct {
		name    string
		store   *stubAvailabilityStore
		wantErr string
	}{
		{
			name:  "facts present",
			store: &stubAvailabilityStore{avail: domain.FactAvailability{InventoryRows: 1200, SalesRows: 800}},
		},
		{
			name:  "zero sales is only a warning",
			store: &stubAvailabilityStore{avail: domain.FactAvailability{InventoryRows: 1200}},
		},
		{
			name:    "missing inventory fails the stage",
			store:   &stubAvailabilityStore{},
			wantErr: "no inventory facts for 20260830",
		},
		{
			name:    "store error propagates",
			store:   &stubAvailabilityStore{err: errors.New("timeout")},
			wantErr: "timeout",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stage := NewFactAvailabilityStage(tc.store, 20260830, PolicyFailSoft, zerolog.Nop())
			require.Equal(t, StageFactAvailability, stage.Name)
			assert.Equal(t, PolicyFailSoft, stage.Policy)

			err := stage.Run(context.Background())
			if tc.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tc.wantErr)
			}
		})
	}
}
