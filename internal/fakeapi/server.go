// Package fakeapi provides an in-process fake of the platform API for
// integration tests, over websocket and plain HTTP POST. It speaks the RPC
// protocol over CBOR and keeps documents and link instances in memory, so
// client round trips behave like a small real server. Stub responses can be
// registered to override any method, which is how tests inject errors.
package fakeapi

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/gorilla/websocket"

	"github.com/lumeer/lumeer.go/internal/codec"
	"github.com/lumeer/lumeer.go/pkg/connection"
	"github.com/lumeer/lumeer.go/pkg/models"
)

// StubResponse overrides the built-in handling of one RPC method. Result and
// Error are mutually exclusive.
type StubResponse struct {
	Method string
	Result any
	Error  *connection.RPCError
	// Once removes the stub after its first match, letting a retry reach
	// the built-in handler.
	Once bool
}

// SimpleStub returns a stub answering the method with a fixed result.
func SimpleStub(method string, result any) StubResponse {
	return StubResponse{Method: method, Result: result}
}

// ErrorStub returns a stub failing the method with an RPC error.
func ErrorStub(method string, code int, message string) StubResponse {
	return StubResponse{Method: method, Error: &connection.RPCError{Code: code, Message: message}}
}

// Server is the fake platform API.
type Server struct {
	httpServer *httptest.Server
	upgrader   websocket.Upgrader

	mu        sync.Mutex
	stubs     []StubResponse
	documents map[string]*models.DocumentDTO
	links     map[string]*models.LinkInstanceDTO
	nextID    int

	marshaler   codec.Marshaler
	unmarshaler codec.Unmarshaler
}

// rawRequest mirrors connection.RPCRequest with undecoded params, so each
// handler can decode them into the type it expects.
type rawRequest struct {
	ID     string            `cbor:"id"`
	Method string            `cbor:"method"`
	Params []cbor.RawMessage `cbor:"params"`
}

type searchRequest struct {
	Query *models.Query `cbor:"query"`
}

// searchResponse mirrors the wire shape of a search result.
type searchResponse struct {
	Documents     []*models.DocumentDTO     `cbor:"documents"`
	LinkInstances []*models.LinkInstanceDTO `cbor:"linkInstances"`
}

// NewServer starts the fake API on a random local port.
func NewServer() *Server {
	c := codec.NewCBOR()
	s := &Server{
		documents:   map[string]*models.DocumentDTO{},
		links:       map[string]*models.LinkInstanceDTO{},
		marshaler:   c,
		unmarshaler: c,
	}
	s.httpServer = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// URL returns the ws:// endpoint clients should connect to.
func (s *Server) URL() string {
	return "ws" + strings.TrimPrefix(s.httpServer.URL, "http")
}

// HTTPURL returns the http:// endpoint for the POST-per-call fallback.
func (s *Server) HTTPURL() string {
	return s.httpServer.URL
}

func (s *Server) Close() {
	s.httpServer.Close()
}

// AddStub registers a stub response. Stubs are matched before the built-in
// handlers, in registration order.
func (s *Server) AddStub(stub StubResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stubs = append(s.stubs, stub)
}

// SeedDocument places a document into the in-memory store.
func (s *Server) SeedDocument(dto *models.DocumentDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents[dto.ID] = dto
}

// SeedLinkInstance places a link instance into the in-memory store.
func (s *Server) SeedLinkInstance(dto *models.LinkInstanceDTO) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.links[dto.ID] = dto
}

// Document returns the stored document by id.
func (s *Server) Document(id string) (*models.DocumentDTO, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dto, ok := s.documents[id]
	return dto, ok
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	if websocket.IsWebSocketUpgrade(r) {
		s.serveWS(w, r)
		return
	}
	s.serveHTTPRPC(w, r)
}

// serveHTTPRPC answers one RPC per POST, mirroring the websocket protocol.
func (s *Server) serveHTTPRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	data, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}
	var req rawRequest
	if err := s.unmarshaler.Unmarshal(data, &req); err != nil {
		http.Error(w, "parse error", http.StatusBadRequest)
		return
	}

	result, rpcErr := s.handle(&req)
	resp := connection.RPCResponse[any]{ID: req.ID, Error: rpcErr}
	if rpcErr == nil {
		resp.Result = &result
	}
	body, err := s.marshaler.Marshal(resp)
	if err != nil {
		log.Printf("fakeapi: marshal error: %v", err)
		http.Error(w, "marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/cbor")
	_, _ = w.Write(body)
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req rawRequest
		if err := s.unmarshaler.Unmarshal(data, &req); err != nil {
			log.Printf("fakeapi: parse error: %v", err)
			continue
		}
		result, rpcErr := s.handle(&req)
		s.writeResponse(conn, req.ID, result, rpcErr)
	}
}

func (s *Server) writeResponse(conn *websocket.Conn, id string, result any, rpcErr *connection.RPCError) {
	resp := connection.RPCResponse[any]{ID: id, Error: rpcErr}
	if rpcErr == nil {
		resp.Result = &result
	}
	data, err := s.marshaler.Marshal(resp)
	if err != nil {
		log.Printf("fakeapi: marshal error: %v", err)
		return
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		log.Printf("fakeapi: write error: %v", err)
	}
}

func (s *Server) handle(req *rawRequest) (any, *connection.RPCError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, stub := range s.stubs {
		if stub.Method != req.Method {
			continue
		}
		if stub.Once {
			s.stubs = append(s.stubs[:i], s.stubs[i+1:]...)
		}
		return stub.Result, stub.Error
	}

	switch req.Method {
	case connection.MethodSearch:
		return s.handleSearch(req)
	case connection.MethodCreateDocument:
		return s.handleCreateDocument(req)
	case connection.MethodUpdateDocumentData:
		return s.handleDocumentData(req, false)
	case connection.MethodPatchDocumentData:
		return s.handleDocumentData(req, true)
	case connection.MethodDeleteDocument:
		return s.handleDeleteDocument(req)
	case connection.MethodCreateLinkInstance:
		return s.handleCreateLinkInstance(req)
	case connection.MethodUpdateLinkInstance:
		return s.handleLinkInstanceData(req, false)
	case connection.MethodPatchLinkInstanceData:
		return s.handleLinkInstanceData(req, true)
	case connection.MethodDeleteLinkInstance:
		return s.handleDeleteLinkInstance(req)
	}
	return nil, &connection.RPCError{Code: -32601, Message: "Method not found: " + req.Method}
}

func (s *Server) handleSearch(req *rawRequest) (any, *connection.RPCError) {
	var params searchRequest
	if len(req.Params) > 0 {
		if err := s.unmarshaler.Unmarshal(req.Params[0], &params); err != nil {
			return nil, invalidParams(err)
		}
	}

	resp := searchResponse{
		Documents:     []*models.DocumentDTO{},
		LinkInstances: []*models.LinkInstanceDTO{},
	}
	for _, dto := range s.documents {
		if matchesDocument(params.Query, dto) {
			resp.Documents = append(resp.Documents, dto)
		}
	}
	for _, dto := range s.links {
		if params.Query == nil || params.Query.ContainsLinkType(dto.LinkTypeID) {
			resp.LinkInstances = append(resp.LinkInstances, dto)
		}
	}
	return resp, nil
}

// matchesDocument applies a stem's collection and explicit document-id
// restrictions, the way the real search endpoint scopes its results.
func matchesDocument(query *models.Query, dto *models.DocumentDTO) bool {
	if query == nil {
		return true
	}
	for _, stem := range query.Stems {
		if stem.CollectionID != dto.CollectionID {
			continue
		}
		if len(stem.DocumentIDs) == 0 {
			return true
		}
		for _, id := range stem.DocumentIDs {
			if id == dto.ID {
				return true
			}
		}
	}
	return false
}

func (s *Server) handleCreateDocument(req *rawRequest) (any, *connection.RPCError) {
	var dto models.DocumentDTO
	if err := s.decodeParam(req, 0, &dto); err != nil {
		return nil, invalidParams(err)
	}

	s.nextID++
	dto.ID = fmt.Sprintf("doc%d", s.nextID)
	version := 1
	dto.DataVersion = &version
	now := time.Now().UnixMilli()
	dto.CreationDate = now
	dto.UpdateDate = now
	s.documents[dto.ID] = &dto
	return dto, nil
}

func (s *Server) handleDocumentData(req *rawRequest, patch bool) (any, *connection.RPCError) {
	id, data, rpcErr := s.decodeDataParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	dto, ok := s.documents[id]
	if !ok {
		return nil, notFound("document", id)
	}
	applyData(&dto.Data, &dto.DataVersion, &dto.UpdateDate, data, patch)
	return *dto, nil
}

func (s *Server) handleDeleteDocument(req *rawRequest) (any, *connection.RPCError) {
	var id string
	if err := s.decodeParam(req, 0, &id); err != nil {
		return nil, invalidParams(err)
	}
	if _, ok := s.documents[id]; !ok {
		return nil, notFound("document", id)
	}
	delete(s.documents, id)
	return true, nil
}

func (s *Server) handleCreateLinkInstance(req *rawRequest) (any, *connection.RPCError) {
	var dto models.LinkInstanceDTO
	if err := s.decodeParam(req, 0, &dto); err != nil {
		return nil, invalidParams(err)
	}

	s.nextID++
	dto.ID = fmt.Sprintf("link%d", s.nextID)
	version := 1
	dto.DataVersion = &version
	now := time.Now().UnixMilli()
	dto.CreationDate = now
	dto.UpdateDate = now
	s.links[dto.ID] = &dto
	return dto, nil
}

func (s *Server) handleLinkInstanceData(req *rawRequest, patch bool) (any, *connection.RPCError) {
	id, data, rpcErr := s.decodeDataParams(req)
	if rpcErr != nil {
		return nil, rpcErr
	}
	dto, ok := s.links[id]
	if !ok {
		return nil, notFound("link instance", id)
	}
	applyData(&dto.Data, &dto.DataVersion, &dto.UpdateDate, data, patch)
	return *dto, nil
}

func (s *Server) handleDeleteLinkInstance(req *rawRequest) (any, *connection.RPCError) {
	var id string
	if err := s.decodeParam(req, 0, &id); err != nil {
		return nil, invalidParams(err)
	}
	if _, ok := s.links[id]; !ok {
		return nil, notFound("link instance", id)
	}
	delete(s.links, id)
	return true, nil
}

func (s *Server) decodeParam(req *rawRequest, i int, out any) error {
	if len(req.Params) <= i {
		return fmt.Errorf("missing parameter %d", i)
	}
	return s.unmarshaler.Unmarshal(req.Params[i], out)
}

func (s *Server) decodeDataParams(req *rawRequest) (string, map[string]any, *connection.RPCError) {
	var id string
	if err := s.decodeParam(req, 0, &id); err != nil {
		return "", nil, invalidParams(err)
	}
	var data map[string]any
	if err := s.decodeParam(req, 1, &data); err != nil {
		return "", nil, invalidParams(err)
	}
	return id, data, nil
}

func applyData(data *map[string]any, version **int, updateDate *int64, incoming map[string]any, patch bool) {
	if patch {
		merged := make(map[string]any, len(*data)+len(incoming))
		for k, v := range *data {
			merged[k] = v
		}
		for k, v := range incoming {
			merged[k] = v
		}
		*data = merged
	} else {
		*data = incoming
	}

	next := 1
	if *version != nil {
		next = **version + 1
	}
	*version = &next
	*updateDate = time.Now().UnixMilli()
}

func invalidParams(err error) *connection.RPCError {
	return &connection.RPCError{Code: -32602, Message: "Invalid params: " + err.Error()}
}

func notFound(kind, id string) *connection.RPCError {
	return &connection.RPCError{Code: -32000, Message: fmt.Sprintf("%s %q not found", kind, id)}
}
