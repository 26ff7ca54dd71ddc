package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/samirwankhede/channel-booking-reports/internal/report/channel"
)

func TestChannelWarmerRefresh(t *testing.T) {
	ref := &fakeReference{entries: []channel.ReferenceEntry{{RowID: 1, Index: 3, Name: "Expedia"}}}
	cache := &memCache{names: []string{"all", "Stale"}}
	s := newService(&fakeStore{}, ref, cache)

	n, err := NewChannelWarmer(zap.NewNop(), s).Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ref.calls)
	assert.NotContains(t, cache.names, "Stale")
	assert.Contains(t, cache.names, "Expedia")
	assert.Equal(t, len(cache.names)-1, n)
}
