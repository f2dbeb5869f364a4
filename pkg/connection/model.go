package connection

// RPCError is an error reported by the remote API.
type RPCError struct {
	Code    int    `json:"code" cbor:"code"`
	Message string `json:"message,omitempty" cbor:"message,omitempty"`
}

func (r *RPCError) Error() string {
	return r.Message
}

func (r *RPCError) Is(target error) bool {
	if target == nil {
		return r == nil
	}
	_, ok := target.(*RPCError)
	return ok
}

// RPCRequest is an outgoing RPC call.
type RPCRequest struct {
	ID     string `json:"id" cbor:"id"`
	Method string `json:"method,omitempty" cbor:"method,omitempty"`
	Params []any  `json:"params,omitempty" cbor:"params,omitempty"`
}

// RPCResponse is an incoming RPC reply, matched to its request by ID.
type RPCResponse[T any] struct {
	ID     string    `json:"id" cbor:"id"`
	Error  *RPCError `json:"error,omitempty" cbor:"error,omitempty"`
	Result *T        `json:"result,omitempty" cbor:"result,omitempty"`
}

// RPC methods of the platform API the SDK calls.
const (
	MethodSearch                = "search"
	MethodCreateDocument        = "createDocument"
	MethodUpdateDocumentData    = "updateDocumentData"
	MethodPatchDocumentData     = "patchDocumentData"
	MethodDeleteDocument        = "deleteDocument"
	MethodCreateLinkInstance    = "createLinkInstance"
	MethodUpdateLinkInstance    = "updateLinkInstanceData"
	MethodPatchLinkInstanceData = "patchLinkInstanceData"
	MethodDeleteLinkInstance    = "deleteLinkInstance"
)
