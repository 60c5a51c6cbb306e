package schemas_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/quote-pipeline/internal/schemas"
	schemafiles "github.com/jonathan/quote-pipeline/schemas"
)

func TestAllSchemaFiles_ValidJSON(t *testing.T) {
	for _, name := range schemafiles.Names() {
		t.Run(name, func(t *testing.T) {
			content, err := schemafiles.Read(name)
			require.NoError(t, err, "should be able to read embedded schema")

			var schemaObj map[string]interface{}
			require.NoError(t, json.Unmarshal([]byte(content), &schemaObj), "schema file should be valid JSON")

			_, hasType := schemaObj["type"]
			_, hasSchema := schemaObj["$schema"]
			assert.True(t, hasType && hasSchema, "schema should declare $schema and type")
		})
	}
}

func TestRead_Unknown(t *testing.T) {
	_, err := schemafiles.Read("missing.schema.json")
	assert.Error(t, err)
}

func TestDraftSchema_AcceptsLooseAmounts(t *testing.T) {
	content, err := schemafiles.Read(schemafiles.DraftSchema)
	require.NoError(t, err)

	doc := `{
		"work_items": [
			{"name": "Kakelsättning vägg", "hours": "7,5", "hourly_rate": 650},
			{"title": "Rivning", "hours": 9}
		],
		"materials": [{"name": "Kakel vägg", "quantity": 14, "price": "400 kr"}]
	}`
	assert.NoError(t, schemas.ValidateJSONString(content, doc))
}

func TestQuoteSchema_RejectsStringHours(t *testing.T) {
	content, err := schemafiles.Read(schemafiles.QuoteSchema)
	require.NoError(t, err)

	doc := `{"work_items": [{"name": "Rivning", "hours": "9", "hourly_rate": 650}]}`
	err = schemas.ValidateJSONString(content, doc)
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.NotEmpty(t, validationErr.Errors)
}
