package models

// DocumentMetaData carries document metadata outside the attribute data, such
// as the optional hierarchy parent.
type DocumentMetaData struct {
	ParentID string
}

// Document is a record belonging to a collection.
type Document struct {
	DataResource

	CollectionID string
	MetaData     *DocumentMetaData

	// NewData holds pending edits keyed by attribute name instead of id,
	// used while the owning attribute is still being created server-side.
	NewData map[string]any
}

func (d *Document) Resource() *DataResource { return &d.DataResource }

func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	clone := &Document{CollectionID: d.CollectionID}
	d.DataResource.cloneInto(&clone.DataResource)
	if d.MetaData != nil {
		meta := *d.MetaData
		clone.MetaData = &meta
	}
	if d.NewData != nil {
		clone.NewData = make(map[string]any, len(d.NewData))
		for k, v := range d.NewData {
			clone.NewData[k] = v
		}
	}
	return clone
}

// ParentID returns the hierarchy parent id, or empty when the document is a
// root.
func (d *Document) ParentID() string {
	if d.MetaData == nil {
		return ""
	}
	return d.MetaData.ParentID
}

// GroupDocumentsByParent indexes documents by their hierarchy parent id.
// Root documents group under the empty key.
func GroupDocumentsByParent(documents []*Document) map[string][]*Document {
	groups := make(map[string][]*Document)
	for _, doc := range documents {
		groups[doc.ParentID()] = append(groups[doc.ParentID()], doc)
	}
	return groups
}
