package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewIntentionId(t *testing.T) {
	id := NewIntentionId()
	assert.True(t, strings.HasPrefix(id, "in_"))
	assert.Greater(t, len(id), len("in_"))

	// Ids are unique
	assert.NotEqual(t, id, NewIntentionId())
}

func TestIsValidTemplateId(t *testing.T) {
	assert.True(t, IsValidTemplateId("wedding"))
	assert.True(t, IsValidTemplateId("wedding_gold"))

	assert.False(t, IsValidTemplateId(""))
	assert.False(t, IsValidTemplateId("Wedding"))
	assert.False(t, IsValidTemplateId("wedding1"))
	assert.False(t, IsValidTemplateId("wedding-gold"))
	assert.False(t, IsValidTemplateId("wedding gold"))
	assert.False(t, IsValidTemplateId("wedding;--"))
}

func TestIsValidPlan(t *testing.T) {
	assert.True(t, IsValidPlan(PlanBasic))
	assert.True(t, IsValidPlan(PlanStandard))
	assert.True(t, IsValidPlan(PlanPremium))

	assert.False(t, IsValidPlan(""))
	assert.False(t, IsValidPlan("gold"))
}
