package store

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wnt/pollhub/internal/models"
)

func TestFreeLimitPolicy(t *testing.T) {
	policy := FreeLimitPolicy{Limit: 1}

	t.Run("allows under the limit", func(t *testing.T) {
		err := policy.CanCreate(models.Profile{Address: "0xa"}, 0)
		assert.NoError(t, err)
	})

	t.Run("denies at the limit", func(t *testing.T) {
		err := policy.CanCreate(models.Profile{Address: "0xa"}, 1)
		assert.True(t, IsQuotaError(err))
	})

	t.Run("creator pass bypasses the limit", func(t *testing.T) {
		err := policy.CanCreate(models.Profile{Address: "0xa", HasCreatorPass: true}, 100)
		assert.NoError(t, err)
	})

	t.Run("zero limit falls back to the default", func(t *testing.T) {
		p := FreeLimitPolicy{}
		assert.NoError(t, p.CanCreate(models.Profile{}, 0))
		assert.True(t, IsQuotaError(p.CanCreate(models.Profile{}, FreePollLimit)))
	})
}

func TestBadgeTierPolicy(t *testing.T) {
	policy := BadgeTierPolicy{
		Base: 1,
		ExtraAllowance: func(address string) int {
			if address == "0xbadge" {
				return 5
			}
			return 0
		},
	}

	t.Run("base allowance only", func(t *testing.T) {
		assert.NoError(t, policy.CanCreate(models.Profile{Address: "0xplain"}, 0))
		assert.True(t, IsQuotaError(policy.CanCreate(models.Profile{Address: "0xplain"}, 1)))
	})

	t.Run("badges extend the allowance", func(t *testing.T) {
		assert.NoError(t, policy.CanCreate(models.Profile{Address: "0xbadge"}, 5))
		assert.True(t, IsQuotaError(policy.CanCreate(models.Profile{Address: "0xbadge"}, 6)))
	})

	t.Run("nil allowance func means no bonus", func(t *testing.T) {
		p := BadgeTierPolicy{Base: 2}
		assert.NoError(t, p.CanCreate(models.Profile{Address: "0xa"}, 1))
		assert.True(t, IsQuotaError(p.CanCreate(models.Profile{Address: "0xa"}, 2)))
	})
}
