package utils

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name  string `validate:"required"`
	Port  int    `validate:"min=1,max=65535"`
	Items []item `validate:"dive"`
}

type item struct {
	Key string `validate:"required"`
}

func TestFormatValidationError(t *testing.T) {
	v := validator.New()
	err := v.Struct(&sample{Port: 70000, Items: []item{{}}})

	msg := FormatValidationError(err)
	assert.Contains(t, msg, "字段 Name 必填")
	assert.Contains(t, msg, "字段 Port 不能大于 65535")
	assert.Contains(t, msg, "字段 Items[0].Key 必填")
}

func TestFormatValidationErrorJSON(t *testing.T) {
	var out struct {
		ID int64 `json:"id"`
	}
	err := json.Unmarshal([]byte(`{"id":"x"}`), &out)
	assert.Contains(t, FormatValidationError(err), "字段 id")

	err = json.Unmarshal([]byte(`{`), &out)
	assert.NotEmpty(t, FormatValidationError(err))

	assert.Equal(t, "boom", FormatValidationError(errors.New("boom")))
	assert.Empty(t, FormatValidationError(nil))
}
