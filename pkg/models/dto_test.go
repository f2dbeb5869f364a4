package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentFromDTO(t *testing.T) {
	version := 4
	count := int64(2)
	dto := &DocumentDTO{
		ID:            "d1",
		CorrelationID: "corr-1",
		CollectionID:  "c1",
		Data:          map[string]any{"a": 1, "_id": "internal"},
		DataVersion:   &version,
		CreationDate:  1714557600000,
		UpdateDate:    1714561200000,
		MetaData:      map[string]any{"parentId": "p1"},
		CommentsCount: &count,
	}

	doc := DocumentFromDTO(dto)

	assert.Equal(t, "d1", doc.ID)
	assert.Equal(t, "corr-1", doc.CorrelationID)
	assert.Equal(t, "c1", doc.CollectionID)
	assert.Equal(t, 4, doc.DataVersion)
	assert.Equal(t, map[string]any{"a": 1}, doc.Data, "internal _id never reaches the model")
	require.NotNil(t, doc.MetaData)
	assert.Equal(t, "p1", doc.MetaData.ParentID)
	require.NotNil(t, doc.CreationDate)
	assert.Equal(t, int64(1714557600000), doc.CreationDate.UnixMilli())
	require.NotNil(t, doc.CommentsCount)
	assert.Equal(t, int64(2), *doc.CommentsCount)
}

func TestDocumentFromDTODefaults(t *testing.T) {
	doc := DocumentFromDTO(&DocumentDTO{ID: "d1", CollectionID: "c1"})

	assert.Equal(t, 0, doc.DataVersion, "missing version defaults to zero")
	assert.Nil(t, doc.CreationDate)
	assert.Nil(t, doc.UpdateDate)
	assert.Nil(t, doc.MetaData)
	assert.NotNil(t, doc.Data, "data is always usable")
}

func TestDocumentDTORoundTrip(t *testing.T) {
	updated := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	doc := &Document{
		DataResource: DataResource{
			ID:          "d1",
			Data:        map[string]any{"a": "x"},
			DataVersion: 3,
			UpdateDate:  &updated,
		},
		CollectionID: "c1",
		MetaData:     &DocumentMetaData{ParentID: "p1"},
	}

	back := DocumentFromDTO(DocumentToDTO(doc))

	assert.Equal(t, doc.ID, back.ID)
	assert.Equal(t, doc.CollectionID, back.CollectionID)
	assert.Equal(t, doc.Data, back.Data)
	assert.Equal(t, doc.DataVersion, back.DataVersion)
	assert.Equal(t, doc.UpdateDate.UnixMilli(), back.UpdateDate.UnixMilli())
	require.NotNil(t, back.MetaData)
	assert.Equal(t, "p1", back.MetaData.ParentID)
}

func TestLinkInstanceDTORoundTrip(t *testing.T) {
	link := &LinkInstance{
		DataResource: DataResource{
			ID:          "l1",
			Data:        map[string]any{"weight": 2},
			DataVersion: 1,
		},
		LinkTypeID:  "lt1",
		DocumentIDs: [2]string{"d1", "d2"},
	}

	back := LinkInstanceFromDTO(LinkInstanceToDTO(link))

	assert.Equal(t, link.ID, back.ID)
	assert.Equal(t, link.LinkTypeID, back.LinkTypeID)
	assert.Equal(t, link.DocumentIDs, back.DocumentIDs)
	assert.Equal(t, link.Data, back.Data)
	assert.Equal(t, link.DataVersion, back.DataVersion)
}

func TestLinkInstanceFromDTOShortDocumentIDs(t *testing.T) {
	link := LinkInstanceFromDTO(&LinkInstanceDTO{ID: "l1", LinkTypeID: "lt1", DocumentIDs: []string{"d1"}})

	assert.Equal(t, [2]string{"d1", ""}, link.DocumentIDs)
}
