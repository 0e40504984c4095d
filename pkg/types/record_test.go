package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordValidate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		record  Record
		wantErr error
	}{
		{
			name:   "valid bookmark",
			record: Record{Title: "Go", URL: "https://go.dev", Origin: OriginBookmark},
		},
		{
			name:   "valid history",
			record: Record{Title: "Go", URL: "https://go.dev", Origin: OriginHistory, VisitCount: 3, LastVisit: now},
		},
		{
			name:    "empty url",
			record:  Record{Title: "Go", Origin: OriginBookmark},
			wantErr: ErrEmptyURL,
		},
		{
			name:    "empty title",
			record:  Record{URL: "https://go.dev", Origin: OriginBookmark},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "history without visit data",
			record:  Record{Title: "Go", URL: "https://go.dev", Origin: OriginHistory, VisitCount: 3},
			wantErr: ErrMissingVisitInfo,
		},
		{
			name:    "history with negative count",
			record:  Record{Title: "Go", URL: "https://go.dev", Origin: OriginHistory, VisitCount: -1, LastVisit: now},
			wantErr: ErrMissingVisitInfo,
		},
		{
			name:    "unknown origin",
			record:  Record{Title: "Go", URL: "https://go.dev", Origin: Origin(7)},
			wantErr: ErrInvalidOrigin,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.record.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestOriginString(t *testing.T) {
	assert.Equal(t, "bookmark", OriginBookmark.String())
	assert.Equal(t, "history", OriginHistory.String())
	assert.Equal(t, "unknown", Origin(42).String())
}
