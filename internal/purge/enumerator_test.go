package purge

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

// pagedTransport serves canned pages in order and ignores the cursor.
type pagedTransport struct {
	fakeTransport
	pages [][]MessageID
	calls []MessageID
}

func (p *pagedTransport) FetchHistory(_ context.Context, _ ChatID, _, beforeID MessageID, _ int) ([]MessageID, error) {
	p.calls = append(p.calls, beforeID)
	if len(p.pages) == 0 {
		return nil, nil
	}
	page := p.pages[0]
	p.pages = p.pages[1:]
	return page, nil
}

func drain(t *testing.T, en *enumerator) ([]MessageID, error) {
	t.Helper()
	var ids []MessageID
	for {
		id, ok, err := en.Next(context.Background())
		if err != nil {
			return ids, err
		}
		if !ok {
			return ids, nil
		}
		ids = append(ids, id)
	}
}

func TestEnumerator(t *testing.T) {
	tests := []struct {
		name      string
		minID     MessageID
		pages     [][]MessageID
		want      []MessageID
		wantCalls []MessageID
		wantErr   error
	}{
		{
			name:      "empty history",
			minID:     10,
			pages:     nil,
			want:      nil,
			wantCalls: []MessageID{0},
		},
		{
			name:      "pages are chained by cursor",
			minID:     10,
			pages:     [][]MessageID{{20, 19, 18}, {17, 16}, {15}},
			want:      []MessageID{20, 19, 18, 17, 16, 15},
			wantCalls: []MessageID{0, 18, 16, 15},
		},
		{
			name:      "ids outside the range are skipped",
			minID:     10,
			pages:     [][]MessageID{{14, 12, 10, 9}},
			want:      []MessageID{14, 12},
			wantCalls: []MessageID{0},
		},
		{
			name:      "overlapping page does not repeat ids",
			minID:     10,
			pages:     [][]MessageID{{20, 19}, {19, 18, 17}},
			want:      []MessageID{20, 19, 18, 17},
			wantCalls: []MessageID{0, 19, 17},
		},
		{
			name:      "stops once the range floor is reached",
			minID:     10,
			pages:     [][]MessageID{{13, 12, 11}, {99}},
			want:      []MessageID{13, 12, 11},
			wantCalls: []MessageID{0},
		},
		{
			name:      "stalled cursor is an error",
			minID:     10,
			pages:     [][]MessageID{{20, 19}, {25, 19}},
			want:      []MessageID{20, 19},
			wantCalls: []MessageID{0, 19},
			wantErr:   errStalledHistory,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &pagedTransport{pages: tt.pages}
			en := newEnumerator(tr, testChat, tt.minID, 3)

			got, err := drain(t, en)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantCalls, tr.calls)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			// Exhausted enumerators keep reporting the end.
			_, ok, err := en.Next(context.Background())
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestEnumeratorFetchError(t *testing.T) {
	fetchErr := errors.New("timeout")
	tr := newFakeTransport(1, 10)
	tr.failOnFetch = 1
	tr.fetchErr = fetchErr

	en := newEnumerator(tr, testChat, 1, 5)
	_, ok, err := en.Next(context.Background())
	require.False(t, ok)
	require.ErrorIs(t, err, fetchErr)

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	require.Equal(t, OpFetchHistory, tErr.Op)
	require.Equal(t, testChat, tErr.ChatID)
}
