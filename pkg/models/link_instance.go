package models

// LinkInstance connects exactly two documents through a link type.
type LinkInstance struct {
	DataResource

	LinkTypeID  string
	DocumentIDs [2]string
}

func (l *LinkInstance) Resource() *DataResource { return &l.DataResource }

func (l *LinkInstance) Clone() *LinkInstance {
	if l == nil {
		return nil
	}
	clone := &LinkInstance{LinkTypeID: l.LinkTypeID, DocumentIDs: l.DocumentIDs}
	l.DataResource.cloneInto(&clone.DataResource)
	return clone
}

// GetOtherLinkedDocumentID returns the id on the opposite side of the link
// from documentID, or empty when the link or id is missing. First non-matching
// slot wins, so a self-link resolves to the second slot.
func GetOtherLinkedDocumentID(link *LinkInstance, documentID string) string {
	if link == nil || documentID == "" {
		return ""
	}
	if link.DocumentIDs[0] != documentID {
		return link.DocumentIDs[0]
	}
	return link.DocumentIDs[1]
}
