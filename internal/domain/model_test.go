package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPortfolio_IsDynamic(t *testing.T) {
	assert.True(t, (&Portfolio{Origin: OriginDynamic}).IsDynamic())
	assert.False(t, (&Portfolio{Origin: OriginStatic}).IsDynamic())
	assert.False(t, (&Portfolio{}).IsDynamic())
}

func TestRefreshRecord_Degraded(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record RefreshRecord
		want   bool
	}{
		{
			name:   "完整刷新",
			record: RefreshRecord{StartedAt: now, Matched: 3, Dynamic: 3, Static: 1},
			want:   false,
		},
		{
			name:   "列表获取失败",
			record: RefreshRecord{StartedAt: now, Static: 1, ProviderError: "rate limited"},
			want:   true,
		},
		{
			name:   "有条目被丢弃",
			record: RefreshRecord{StartedAt: now, Matched: 2, Dynamic: 1, Dropped: 1},
			want:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.Degraded())
		})
	}
}
