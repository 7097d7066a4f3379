package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rx3lixir/search-service/internal/opensearch/models"
)

func TestDefaultRegistryCoversAllTypes(t *testing.T) {
	r := NewDefaultRegistry()

	assert.ElementsMatch(t, models.AllTypes(), r.Types())

	for _, docType := range models.AllTypes() {
		spec, err := r.Schema(docType)
		require.NoError(t, err)
		assert.Contains(t, spec, "title")
		assert.Contains(t, spec, "tags")
		assert.Contains(t, spec, "category")
	}
}

func TestRegisterTypeRequiresCoreFields(t *testing.T) {
	r := NewRegistry()

	err := r.RegisterType("custom", FieldSpec{
		"title": {Searchable: true},
		"tags":  {Searchable: true},
	})
	assert.Error(t, err) // нет category

	err = r.RegisterType("", FieldSpec{})
	assert.Error(t, err)

	require.NoError(t, r.RegisterType("custom", FieldSpec{
		"title":    {Searchable: true, Suggest: true},
		"tags":     {Searchable: true},
		"category": {Searchable: true},
	}))

	spec, err := r.Schema("custom")
	require.NoError(t, err)
	assert.True(t, spec["title"].Suggest)
}

func TestSchemaUnknownType(t *testing.T) {
	r := NewDefaultRegistry()
	_, err := r.Schema("martians")
	assert.Error(t, err)
}

func TestHasFieldAcrossTypes(t *testing.T) {
	r := NewDefaultRegistry()

	assert.True(t, r.HasField("title"))
	assert.True(t, r.HasField("institution.tuition"))
	assert.True(t, r.HasField("funding.amount"))
	assert.False(t, r.HasField("no_such_field"))
}

func TestSuggestFields(t *testing.T) {
	r := NewDefaultRegistry()

	fields, err := r.SuggestFields(models.TypeInstitution)
	require.NoError(t, err)
	assert.Equal(t, []string{"title"}, fields)

	// У заявок подсказки отключены
	fields, err = r.SuggestFields(models.TypeApplication)
	require.NoError(t, err)
	assert.Empty(t, fields)
}

func TestRegisterTypeCopiesSpec(t *testing.T) {
	r := NewRegistry()
	spec := FieldSpec{
		"title":    {Searchable: true},
		"tags":     {},
		"category": {},
	}
	require.NoError(t, r.RegisterType("custom", spec))

	// Мутация исходной карты не протекает в реестр
	spec["title"] = FieldOptions{}
	got, err := r.Schema("custom")
	require.NoError(t, err)
	assert.True(t, got["title"].Searchable)
}
