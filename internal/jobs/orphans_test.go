package jobs

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPruner struct {
	pruneFunc func(ctx context.Context) (int, error)
	calls     int
}

func (m *mockPruner) PruneOrphans(ctx context.Context) (int, error) {
	m.calls++
	if m.pruneFunc != nil {
		return m.pruneFunc(ctx)
	}
	return 0, nil
}

func TestPruneOrphans(t *testing.T) {
	tests := []struct {
		name      string
		pruned    int
		pruneErr  error
		wantErr   bool
		wantLog   string
		wantLevel string
	}{
		{name: "nothing to prune", pruned: 0, wantLevel: `"level":"debug"`},
		{name: "pruned items", pruned: 3, wantLevel: `"level":"info"`, wantLog: `"pruned":3`},
		{name: "store failure", pruneErr: errors.New("store closed"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
			p := &mockPruner{pruneFunc: func(ctx context.Context) (int, error) { return tt.pruned, tt.pruneErr }}

			result, err := PruneOrphans(context.Background(), p, logger)
			require.NotNil(t, result)
			assert.Equal(t, 1, p.calls)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "store closed")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pruned, result.Pruned)
			assert.Contains(t, buf.String(), tt.wantLevel)
			assert.Contains(t, buf.String(), tt.wantLog)
			assert.Contains(t, buf.String(), JobTypePruneOrphans)
		})
	}
}

func TestOrphanSweep(t *testing.T) {
	p := &mockPruner{pruneFunc: func(ctx context.Context) (int, error) { return 0, errors.New("boom") }}
	run := OrphanSweep(p, zerolog.Nop())

	assert.Error(t, run(context.Background()))
	assert.Equal(t, 1, p.calls)
}
