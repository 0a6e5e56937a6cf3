package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct_Available(t *testing.T) {
	assert.True(t, (&Product{IsActive: true, Stock: 1}).Available())
	assert.False(t, (&Product{IsActive: true, Stock: 0}).Available())
	assert.False(t, (&Product{IsActive: false, Stock: 10}).Available())
}

func TestProduct_ViewDropsRichFields(t *testing.T) {
	cat := int64(3)
	p := &Product{ID: 1, Name: "Laptop", Slug: "laptop", Description: "fast", Price: 1000,
		Stock: 5, Rating: 4.5, CategoryID: &cat, SupplierID: 9, IsActive: true}

	b, err := json.Marshal(p.View())
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	assert.ElementsMatch(t, []string{"id", "name", "category_id", "slug", "is_active", "price"}, keys(m))
}

func TestCategory_View(t *testing.T) {
	parent := int64(1)
	c := &Category{ID: 2, Name: "Laptops", Slug: "laptops", ParentID: &parent, IsActive: true}
	v := c.View()
	assert.Equal(t, CategoryView{ID: 2, Name: "Laptops", ParentID: &parent, Slug: "laptops", IsActive: true}, v)
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(7, "view_products", nil)
	assert.Equal(t, int64(7), ev.UserID)
	assert.Equal(t, "view_products", ev.Action)
	assert.NotNil(t, ev.Data)

	_, err := time.Parse(time.RFC3339Nano, ev.Timestamp)
	assert.NoError(t, err)
}

func TestIdentity(t *testing.T) {
	id := Identity{ID: 42, IsSupplier: true}
	assert.Equal(t, "42", id.Key())
	assert.True(t, id.Owns(42))
	assert.False(t, id.Owns(41))
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
