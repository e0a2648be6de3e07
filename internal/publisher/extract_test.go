// File: internal/publisher/extract_test.go
package publisher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPublication(t *testing.T) {
	tests := []struct {
		name     string
		finalURL string
		wantID   string
		wantURL  string
		wantErr  bool
	}{
		{
			name:     "plans suffix stripped",
			finalURL: "https://www.seminuevos.com/myvehicle/4482913/plans",
			wantID:   "4482913",
			wantURL:  "https://www.seminuevos.com/myvehicle/4482913",
		},
		{
			name:     "no plans suffix",
			finalURL: "https://www.seminuevos.com/myvehicle/17",
			wantID:   "17",
			wantURL:  "https://www.seminuevos.com/myvehicle/17",
		},
		{
			name:     "no vehicle id in url",
			finalURL: "https://www.seminuevos.com/wizard",
			wantErr:  true,
		},
		{
			name:     "empty url",
			finalURL: "",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, url, err := extractPublication(tt.finalURL)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrNoPublicationID)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantURL, url)
		})
	}
}
