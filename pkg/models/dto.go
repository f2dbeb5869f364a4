package models

import "time"

// Wire representations. Timestamps travel as epoch milliseconds; raw data may
// carry an internal "_id" field the server adds, which never reaches the
// in-memory model.

type DocumentDTO struct {
	ID            string         `json:"id,omitempty" cbor:"id,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty" cbor:"correlationId,omitempty"`
	CollectionID  string         `json:"collectionId" cbor:"collectionId"`
	Data          map[string]any `json:"data" cbor:"data"`
	DataVersion   *int           `json:"dataVersion,omitempty" cbor:"dataVersion,omitempty"`
	CreationDate  int64          `json:"creationDate,omitempty" cbor:"creationDate,omitempty"`
	UpdateDate    int64          `json:"updateDate,omitempty" cbor:"updateDate,omitempty"`
	MetaData      map[string]any `json:"metaData,omitempty" cbor:"metaData,omitempty"`
	CommentsCount *int64         `json:"commentsCount,omitempty" cbor:"commentsCount,omitempty"`
}

type LinkInstanceDTO struct {
	ID            string         `json:"id,omitempty" cbor:"id,omitempty"`
	CorrelationID string         `json:"correlationId,omitempty" cbor:"correlationId,omitempty"`
	LinkTypeID    string         `json:"linkTypeId" cbor:"linkTypeId"`
	DocumentIDs   []string       `json:"documentIds" cbor:"documentIds"`
	Data          map[string]any `json:"data" cbor:"data"`
	DataVersion   *int           `json:"dataVersion,omitempty" cbor:"dataVersion,omitempty"`
	CreationDate  int64          `json:"creationDate,omitempty" cbor:"creationDate,omitempty"`
	UpdateDate    int64          `json:"updateDate,omitempty" cbor:"updateDate,omitempty"`
	CommentsCount *int64         `json:"commentsCount,omitempty" cbor:"commentsCount,omitempty"`
}

func DocumentFromDTO(dto *DocumentDTO) *Document {
	doc := &Document{
		DataResource: dataResourceFromDTO(
			dto.ID, dto.CorrelationID, dto.Data,
			dto.DataVersion, dto.CreationDate, dto.UpdateDate, dto.CommentsCount,
		),
		CollectionID: dto.CollectionID,
	}
	if parent, ok := dto.MetaData["parentId"].(string); ok && parent != "" {
		doc.MetaData = &DocumentMetaData{ParentID: parent}
	}
	return doc
}

func DocumentToDTO(doc *Document) *DocumentDTO {
	version := doc.DataVersion
	dto := &DocumentDTO{
		ID:            doc.ID,
		CorrelationID: doc.CorrelationID,
		CollectionID:  doc.CollectionID,
		Data:          doc.Data,
		DataVersion:   &version,
		CreationDate:  toEpochMillis(doc.CreationDate),
		UpdateDate:    toEpochMillis(doc.UpdateDate),
		CommentsCount: doc.CommentsCount,
	}
	if doc.MetaData != nil && doc.MetaData.ParentID != "" {
		dto.MetaData = map[string]any{"parentId": doc.MetaData.ParentID}
	}
	return dto
}

func LinkInstanceFromDTO(dto *LinkInstanceDTO) *LinkInstance {
	link := &LinkInstance{
		DataResource: dataResourceFromDTO(
			dto.ID, dto.CorrelationID, dto.Data,
			dto.DataVersion, dto.CreationDate, dto.UpdateDate, dto.CommentsCount,
		),
		LinkTypeID: dto.LinkTypeID,
	}
	if len(dto.DocumentIDs) > 0 {
		link.DocumentIDs[0] = dto.DocumentIDs[0]
	}
	if len(dto.DocumentIDs) > 1 {
		link.DocumentIDs[1] = dto.DocumentIDs[1]
	}
	return link
}

func LinkInstanceToDTO(link *LinkInstance) *LinkInstanceDTO {
	version := link.DataVersion
	return &LinkInstanceDTO{
		ID:            link.ID,
		CorrelationID: link.CorrelationID,
		LinkTypeID:    link.LinkTypeID,
		DocumentIDs:   []string{link.DocumentIDs[0], link.DocumentIDs[1]},
		Data:          link.Data,
		DataVersion:   &version,
		CreationDate:  toEpochMillis(link.CreationDate),
		UpdateDate:    toEpochMillis(link.UpdateDate),
		CommentsCount: link.CommentsCount,
	}
}

func dataResourceFromDTO(
	id, correlationID string,
	data map[string]any,
	version *int,
	creationDate, updateDate int64,
	commentsCount *int64,
) DataResource {
	resource := DataResource{
		ID:            id,
		CorrelationID: correlationID,
		Data:          stripInternalID(data),
		CreationDate:  fromEpochMillis(creationDate),
		UpdateDate:    fromEpochMillis(updateDate),
		CommentsCount: commentsCount,
	}
	if version != nil {
		resource.DataVersion = *version
	}
	return resource
}

func stripInternalID(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	if _, ok := data["_id"]; !ok {
		return data
	}
	stripped := make(map[string]any, len(data))
	for k, v := range data {
		if k == "_id" {
			continue
		}
		stripped[k] = v
	}
	return stripped
}

func fromEpochMillis(ms int64) *time.Time {
	if ms == 0 {
		return nil
	}
	t := time.UnixMilli(ms).UTC()
	return &t
}

func toEpochMillis(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.UnixMilli()
}
