package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type form struct {
	Content string  `binding:"notblank"`
	Date    *string `binding:"omitempty,date"`
}

func TestCustomValidator(t *testing.T) {
	v := NewCustomValidator()
	good := "2025-01-02"
	bad := "02/01/2025"

	assert.NoError(t, v.ValidateStruct(&form{Content: "x", Date: &good}))
	assert.NoError(t, v.ValidateStruct(&form{Content: "x"}))
	assert.Error(t, v.ValidateStruct(&form{Content: "   "}))
	assert.Error(t, v.ValidateStruct(&form{Content: "x", Date: &bad}))

	empty := ""
	assert.Error(t, v.ValidateStruct(&form{Content: "x", Date: &empty}))
	assert.NoError(t, v.ValidateStruct("not a struct"))
}
