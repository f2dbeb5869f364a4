package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumeer/lumeer.go/pkg/constraints"
)

func timePtr(t time.Time) *time.Time { return &t }

func TestIsNewerThan(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		r     DataResource
		other DataResource
		want  bool
	}{
		{
			name:  "greater version wins",
			r:     DataResource{DataVersion: 2},
			other: DataResource{DataVersion: 1},
			want:  true,
		},
		{
			name:  "lower version loses",
			r:     DataResource{DataVersion: 1},
			other: DataResource{DataVersion: 2},
			want:  false,
		},
		{
			name:  "version beats later timestamp",
			r:     DataResource{DataVersion: 2, UpdateDate: timePtr(base)},
			other: DataResource{DataVersion: 1, UpdateDate: timePtr(base.Add(time.Hour))},
			want:  true,
		},
		{
			name:  "tied versions fall back to timestamp",
			r:     DataResource{DataVersion: 1, UpdateDate: timePtr(base.Add(time.Minute))},
			other: DataResource{DataVersion: 1, UpdateDate: timePtr(base)},
			want:  true,
		},
		{
			name:  "absent versions compare timestamps",
			r:     DataResource{UpdateDate: timePtr(base.Add(time.Minute))},
			other: DataResource{UpdateDate: timePtr(base)},
			want:  true,
		},
		{
			name:  "equal timestamps are not newer",
			r:     DataResource{UpdateDate: timePtr(base)},
			other: DataResource{UpdateDate: timePtr(base)},
			want:  false,
		},
		{
			name:  "missing timestamp is never newer",
			r:     DataResource{},
			other: DataResource{UpdateDate: timePtr(base)},
			want:  false,
		},
		{
			name:  "all absent is not newer",
			r:     DataResource{},
			other: DataResource{},
			want:  false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.IsNewerThan(&tt.other))
		})
	}
}

func TestDocumentCloneIsDeep(t *testing.T) {
	count := int64(3)
	original := &Document{
		DataResource: DataResource{
			ID:            "d1",
			Data:          map[string]any{"a": 1},
			DataVersion:   2,
			CommentsCount: &count,
		},
		CollectionID: "c1",
		MetaData:     &DocumentMetaData{ParentID: "p1"},
		NewData:      map[string]any{"draft": true},
	}

	clone := original.Clone()
	clone.Data["a"] = 99
	*clone.CommentsCount = 42
	clone.MetaData.ParentID = "other"
	clone.NewData["draft"] = false

	assert.Equal(t, 1, original.Data["a"])
	assert.Equal(t, int64(3), count)
	assert.Equal(t, "p1", original.MetaData.ParentID)
	assert.Equal(t, true, original.NewData["draft"])
}

func TestCloneNil(t *testing.T) {
	var d *Document
	assert.Nil(t, d.Clone())
	var l *LinkInstance
	assert.Nil(t, l.Clone())
}

func TestGetOtherLinkedDocumentID(t *testing.T) {
	link := &LinkInstance{DocumentIDs: [2]string{"x", "y"}}

	assert.Equal(t, "y", GetOtherLinkedDocumentID(link, "x"))
	assert.Equal(t, "x", GetOtherLinkedDocumentID(link, "y"))

	selfLink := &LinkInstance{DocumentIDs: [2]string{"x", "x"}}
	assert.Equal(t, "x", GetOtherLinkedDocumentID(selfLink, "x"))

	assert.Equal(t, "", GetOtherLinkedDocumentID(nil, "x"))
	assert.Equal(t, "", GetOtherLinkedDocumentID(link, ""))
}

func TestGroupDocumentsByParent(t *testing.T) {
	root := &Document{DataResource: DataResource{ID: "r"}}
	childA := &Document{DataResource: DataResource{ID: "a"}, MetaData: &DocumentMetaData{ParentID: "r"}}
	childB := &Document{DataResource: DataResource{ID: "b"}, MetaData: &DocumentMetaData{ParentID: "r"}}
	orphanParent := &Document{DataResource: DataResource{ID: "o"}, MetaData: &DocumentMetaData{ParentID: "gone"}}

	groups := GroupDocumentsByParent([]*Document{root, childA, childB, orphanParent})

	assert.Equal(t, []*Document{root}, groups[""])
	assert.Equal(t, []*Document{childA, childB}, groups["r"])
	assert.Equal(t, []*Document{orphanParent}, groups["gone"])
}

func TestCreateDataValues(t *testing.T) {
	attributes := []Attribute{
		{ID: "a1", Name: "amount", Constraint: constraints.NewNumberConstraint(2)},
		{ID: "a2", Name: "note"},
	}
	data := map[string]any{"a1": 1.5, "a2": "hello", "a3": "ignored"}

	values := CreateDataValues(data, attributes, nil)

	require.Len(t, values, 2)
	assert.Equal(t, "1.50", values["a1"].Format())
	assert.Equal(t, "hello", values["a2"].Format())
}
