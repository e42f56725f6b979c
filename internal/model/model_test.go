package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductInput_ToProduct(t *testing.T) {
	var in ProductInput
	require.NoError(t, json.Unmarshal([]byte(`{"title":"A","price":10,"extra":"dropped","id":99}`), &in))

	p := in.ToProduct(3)
	assert.Equal(t, 3, p.ID)
	assert.Equal(t, "A", p.Title)
	assert.Equal(t, 10.0, p.Price)
	assert.NotNil(t, p.Thumbnails)

	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"title":"A","description":"","code":"","price":10,"status":false,"stock":0,"category":"","thumbnails":[]}`, string(raw))
}

func TestProductPatch_Apply(t *testing.T) {
	base := Product{ID: 1, Title: "A", Price: 10, Stock: 5, Thumbnails: []string{"a.png"}}

	var patch ProductPatch
	require.NoError(t, json.Unmarshal([]byte(`{"id":42,"price":12.5,"status":true}`), &patch))

	got := patch.Apply(base)
	assert.Equal(t, 1, got.ID)
	assert.Equal(t, "A", got.Title)
	assert.Equal(t, 12.5, got.Price)
	assert.True(t, got.Status)
	assert.Equal(t, 5, got.Stock)
	assert.Equal(t, []string{"a.png"}, got.Thumbnails)
}

func TestCart_AddProduct(t *testing.T) {
	c := NewCart(1)
	assert.Equal(t, "1", c.ID)

	assert.True(t, c.AddProduct("5"))
	assert.False(t, c.AddProduct("5"))
	assert.True(t, c.AddProduct("7"))

	assert.Equal(t, []LineItem{{Product: "5", Quantity: 2}, {Product: "7", Quantity: 1}}, c.Products)
}

func TestCart_Sequence(t *testing.T) {
	n, err := Cart{ID: "12"}.Sequence()
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = Cart{ID: "abc"}.Sequence()
	assert.Error(t, err)
}
