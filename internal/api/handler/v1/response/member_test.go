package response

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkstudio/studio-api/internal/domain"
)

func TestNewBalanceResponse_LowFlagBoundary(t *testing.T) {
	tests := []struct {
		remaining int
		wantLow   bool
	}{
		{0, true},
		{1, true},
		{3, true}, // threshold itself is low
		{4, false},
		{10, false},
	}

	for _, tt := range tests {
		resp := NewBalanceResponse(1, domain.Balance{
			Individual: tt.remaining,
			Duo:        tt.remaining,
			Collective: tt.remaining,
		})

		assert.Equal(t, tt.remaining, resp.Individual.Remaining)
		assert.Equal(t, tt.wantLow, resp.Individual.IsLow, "individual remaining=%d", tt.remaining)
		assert.Equal(t, tt.wantLow, resp.Duo.IsLow, "duo remaining=%d", tt.remaining)
		assert.Equal(t, tt.wantLow, resp.Collective.IsLow, "collective remaining=%d", tt.remaining)
	}
}

func TestNewBalanceResponse_KindsIndependent(t *testing.T) {
	resp := NewBalanceResponse(7, domain.Balance{Individual: 2, Duo: 9, Collective: 3})

	assert.Equal(t, uint(7), resp.MemberID)
	assert.True(t, resp.Individual.IsLow)
	assert.False(t, resp.Duo.IsLow)
	assert.True(t, resp.Collective.IsLow)
}
