package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateCircleName(t *testing.T) {
	assert.NoError(t, ValidateCircleName("friends"))
	assert.NoError(t, ValidateCircleName("book club 2026"))
	assert.Error(t, ValidateCircleName(""))
	assert.Error(t, ValidateCircleName("   "))
	assert.Error(t, ValidateCircleName(" padded "))
	assert.Error(t, ValidateCircleName(strings.Repeat("x", 121)))
}
