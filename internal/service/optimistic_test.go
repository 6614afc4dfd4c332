package service

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akhilmk-dev/menahub/pkg/errors"
)

type counter struct {
	Value   int
	Version int
}

func TestSaveWithRetry(t *testing.T) {
	conflict := &errors.ErrConcurrencyConflict{Resource: "counter", ID: "c"}

	tests := []struct {
		name        string
		saveErrs    []error
		wantErr     bool
		wantSaves   int
		wantReloads int
		wantValue   int
	}{
		{name: "first save wins", saveErrs: []error{nil}, wantSaves: 1, wantValue: 1},
		{name: "one conflict then success", saveErrs: []error{conflict, nil}, wantSaves: 2, wantReloads: 1, wantValue: 101},
		{name: "second conflict is returned", saveErrs: []error{conflict, conflict}, wantErr: true, wantSaves: 2, wantReloads: 1},
		{name: "other errors are not retried", saveErrs: []error{stderrors.New("db down")}, wantErr: true, wantSaves: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saves, reloads, retries := 0, 0, 0
			got, err := SaveWithRetry(context.Background(), &counter{Value: 0},
				func(context.Context) (*counter, error) {
					reloads++
					return &counter{Value: 100, Version: 2}, nil
				},
				func(c *counter) { c.Value++ },
				func(context.Context, *counter) error {
					err := tt.saveErrs[saves]
					saves++
					return err
				},
				func() { retries++ },
			)

			assert.Equal(t, tt.wantSaves, saves)
			assert.Equal(t, tt.wantReloads, reloads)
			assert.Equal(t, tt.wantReloads, retries)
			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantValue, got.Value)
		})
	}
}

func TestSaveWithRetry_SecondConflictKeepsKind(t *testing.T) {
	_, err := SaveWithRetry(context.Background(), &counter{},
		func(context.Context) (*counter, error) { return &counter{}, nil },
		func(*counter) {},
		func(context.Context, *counter) error {
			return &errors.ErrConcurrencyConflict{Resource: "counter", ID: "c"}
		},
		nil,
	)
	assert.True(t, errors.IsConcurrencyConflict(err))
	assert.Equal(t, errors.KindConflict, errors.KindOf(err))
}

func TestSaveWithRetry_ReloadFailureIsReturned(t *testing.T) {
	_, err := SaveWithRetry(context.Background(), &counter{},
		func(context.Context) (*counter, error) {
			return nil, &errors.ErrNotFound{Resource: "counter", ID: "c"}
		},
		func(*counter) {},
		func(context.Context, *counter) error {
			return &errors.ErrConcurrencyConflict{Resource: "counter", ID: "c"}
		},
		nil,
	)
	assert.True(t, errors.IsNotFound(err))
}
