package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryEqual(t *testing.T) {
	page := 1

	tests := []struct {
		name string
		a, b *Query
		want bool
	}{
		{
			name: "both nil",
			want: true,
		},
		{
			name: "nil vs empty",
			a:    nil,
			b:    &Query{},
			want: false,
		},
		{
			name: "empty queries",
			a:    &Query{},
			b:    &Query{},
			want: true,
		},
		{
			name: "nil and empty slices are equivalent",
			a:    &Query{Stems: []QueryStem{}, FullTexts: []string{}},
			b:    &Query{},
			want: true,
		},
		{
			name: "same stems",
			a:    &Query{Stems: []QueryStem{{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}}},
			b:    &Query{Stems: []QueryStem{{CollectionID: "c1", LinkTypeIDs: []string{"lt1"}}}},
			want: true,
		},
		{
			name: "nested empty slices normalize too",
			a:    &Query{Stems: []QueryStem{{CollectionID: "c1", DocumentIDs: []string{}}}},
			b:    &Query{Stems: []QueryStem{{CollectionID: "c1"}}},
			want: true,
		},
		{
			name: "different collections",
			a:    &Query{Stems: []QueryStem{{CollectionID: "c1"}}},
			b:    &Query{Stems: []QueryStem{{CollectionID: "c2"}}},
			want: false,
		},
		{
			name: "stem order matters",
			a:    &Query{Stems: []QueryStem{{CollectionID: "c1"}, {CollectionID: "c2"}}},
			b:    &Query{Stems: []QueryStem{{CollectionID: "c2"}, {CollectionID: "c1"}}},
			want: false,
		},
		{
			name: "different paging",
			a:    &Query{Page: &page},
			b:    &Query{},
			want: false,
		},
		{
			name: "filters compared structurally",
			a:    &Query{Stems: []QueryStem{{CollectionID: "c1", Filters: []AttributeFilter{{AttributeID: "a1", Condition: "=", Value: 1}}}}},
			b:    &Query{Stems: []QueryStem{{CollectionID: "c1", Filters: []AttributeFilter{{AttributeID: "a1", Condition: "=", Value: 1}}}}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestQueryContainsCollection(t *testing.T) {
	q := &Query{Stems: []QueryStem{{CollectionID: "c1"}, {CollectionID: "c2", LinkTypeIDs: []string{"lt1", "lt2"}}}}

	assert.True(t, q.ContainsCollection("c1"))
	assert.True(t, q.ContainsCollection("c2"))
	assert.False(t, q.ContainsCollection("c3"))

	assert.True(t, q.ContainsLinkType("lt1"))
	assert.True(t, q.ContainsLinkType("lt2"))
	assert.False(t, q.ContainsLinkType("lt3"))
}
