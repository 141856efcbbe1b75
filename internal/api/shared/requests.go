package shared

import (
	"encoding/json"
	"net/http"
)

// maxRequestBodyBytes caps request bodies so a misbehaving client cannot
// exhaust memory with an unbounded payload.
const maxRequestBodyBytes = 1 << 20 // 1 MiB

// DecodeJSON decodes the request body into the given struct. Unknown fields
// are tolerated; oversized bodies are rejected.
func DecodeJSON(r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(nil, r.Body, maxRequestBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
