package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/craftshop/core/internal/domain/entities"
)

func validDoc() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Origami Crane",
		"image":       "uploads/crane.png",
		"description": "Fold paper",
		"supplies":    []string{"paper"},
	}
}

func newValidator(t *testing.T) *CraftValidator {
	t.Helper()
	v, err := NewCraftValidator()
	require.NoError(t, err)
	return v
}

func TestValidate_ValidDocument(t *testing.T) {
	v := newValidator(t)
	assert.NoError(t, v.Validate(validDoc()))
}

func TestValidate_EmptySuppliesAllowed(t *testing.T) {
	v := newValidator(t)
	doc := validDoc()
	doc["supplies"] = []string{}
	assert.NoError(t, v.Validate(doc))
}

func TestValidate_MissingFields(t *testing.T) {
	for _, field := range []string{"name", "image", "description", "supplies"} {
		t.Run(field, func(t *testing.T) {
			v := newValidator(t)
			doc := validDoc()
			delete(doc, field)

			err := v.Validate(doc)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, field, verr.Field)
			assert.Equal(t, `"`+field+`" is required`, verr.Message)
		})
	}
}

func TestValidate_ReportsFirstFailingField(t *testing.T) {
	v := newValidator(t)
	doc := validDoc()
	delete(doc, "supplies")
	delete(doc, "description")
	doc["image"] = ""

	err := v.Validate(doc)
	require.Error(t, err)
	assert.Equal(t, `"image" is not allowed to be empty`, err.Error())
}

func TestValidate_WrongTypes(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]interface{})
		message string
	}{
		{
			name:    "numeric name",
			mutate:  func(d map[string]interface{}) { d["name"] = 42 },
			message: `"name" must be a string`,
		},
		{
			name:    "supplies as string",
			mutate:  func(d map[string]interface{}) { d["supplies"] = "paper" },
			message: `"supplies" must be an array`,
		},
		{
			name:    "non-string supply",
			mutate:  func(d map[string]interface{}) { d["supplies"] = []interface{}{"paper", 3} },
			message: `"supplies[1]" must be a string`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newValidator(t)
			doc := validDoc()
			tt.mutate(doc)

			err := v.Validate(doc)
			require.Error(t, err)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestInput_BuildsTypedInput(t *testing.T) {
	v := newValidator(t)
	doc := validDoc()
	doc["supplies"] = []interface{}{"paper", "glue"}

	input, err := v.Input(doc)
	require.NoError(t, err)
	assert.Equal(t, "Origami Crane", input.Name)
	assert.Equal(t, "uploads/crane.png", input.Image)
	assert.Equal(t, "Fold paper", input.Description)
	assert.Equal(t, []string{"paper", "glue"}, input.Supplies)
}

func TestValidateCraft(t *testing.T) {
	v := newValidator(t)

	ok := entities.Craft{
		ID:          entities.Int64Ptr(7),
		Name:        "Clay Pot",
		Image:       "uploads/pot.jpg",
		Description: "Pinch a pot",
		Supplies:    []string{"clay"},
	}
	assert.NoError(t, v.ValidateCraft(ok))

	missing := ok
	missing.Supplies = nil
	assert.EqualError(t, v.ValidateCraft(missing), `"supplies" is required`)
}
