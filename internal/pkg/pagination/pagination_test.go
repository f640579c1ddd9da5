package pagination

import (
	"net/url"
	"testing"

	"github.com/etms-hr/etms-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    Params
		wantErr string
	}{
		{name: "defaults", query: "", want: Params{Page: 1, Limit: 20}},
		{name: "explicit", query: "page=3&limit=5", want: Params{Page: 3, Limit: 5}},
		{name: "capped", query: "limit=500", want: Params{Page: 1, Limit: MaxLimit}},
		{name: "zero page", query: "page=0", wantErr: "page"},
		{name: "text page", query: "page=abc", wantErr: "page"},
		{name: "negative limit", query: "limit=-1", wantErr: "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)

			got, err := Parse(q, 20)
			if tt.wantErr != "" {
				var verrs validator.ValidationErrors
				require.ErrorAs(t, err, &verrs)
				assert.Contains(t, verrs.ToMap(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, Limit: 10, Total: 25, Pages: 3}, NewMeta(Params{Page: 1, Limit: 10}, 25))
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 20, Pages: 2}, NewMeta(Params{Page: 2, Limit: 10}, 20))
	assert.Equal(t, 0, NewMeta(Params{Page: 1, Limit: 10}, 0).Pages)
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 30}.Offset())
	assert.Equal(t, 60, Params{Page: 3, Limit: 30}.Offset())
}
