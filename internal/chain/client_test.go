package chain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRPCServer(t *testing.T, handler func(req rpcRequest) (interface{}, *rpcError)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		result, rpcErr := handler(req)
		resp := map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
		}
		if rpcErr != nil {
			resp["error"] = rpcErr
		} else {
			resp["result"] = result
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
}

func testClient(urls ...string) *Client {
	return NewClient(NewPool(urls, zerolog.Nop()), zerolog.Nop())
}

func TestCall(t *testing.T) {
	t.Run("returns the RPC result", func(t *testing.T) {
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			assert.Equal(t, "suix_getLatestSuiSystemState", req.Method)
			return map[string]string{"epoch": "42"}, nil
		})
		defer server.Close()

		result, err := testClient(server.URL).Call(context.Background(), "suix_getLatestSuiSystemState")
		require.NoError(t, err)
		assert.JSONEq(t, `{"epoch":"42"}`, string(result))
	})

	t.Run("surfaces RPC errors", func(t *testing.T) {
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			return nil, &rpcError{Code: -32602, Message: "invalid params"}
		})
		defer server.Close()

		client := testClient(server.URL)
		_, err := client.callOnce(context.Background(), "suix_getOwnedObjects", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid params")
	})

	t.Run("rate limited endpoint is put on cooldown", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		pool := NewPool([]string{server.URL}, zerolog.Nop())
		client := NewClient(pool, zerolog.Nop())

		_, err := client.callOnce(context.Background(), "suix_getOwnedObjects", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "rate limited")
		assert.Equal(t, 0, pool.HealthyCount())
	})

	t.Run("server errors mark the endpoint unhealthy", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		pool := NewPool([]string{server.URL}, zerolog.Nop())
		client := NewClient(pool, zerolog.Nop())

		_, err := client.callOnce(context.Background(), "suix_getOwnedObjects", nil)
		require.Error(t, err)
		assert.Equal(t, 0, pool.HealthyCount())
	})
}

func ownedObjectEntry(objectID, objType string, fields map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"data": map[string]interface{}{
			"objectId": objectID,
			"type":     objType,
			"content": map[string]interface{}{
				"dataType": "moveObject",
				"fields":   fields,
			},
		},
	}
}

func TestGetOwnedObjects(t *testing.T) {
	t.Run("follows pagination cursors", func(t *testing.T) {
		calls := 0
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			calls++
			if calls == 1 {
				cursor := "cursor-1"
				return map[string]interface{}{
					"data":        []interface{}{ownedObjectEntry("0x1", "pkg::survey::Survey", map[string]interface{}{"title": "one"})},
					"hasNextPage": true,
					"nextCursor":  cursor,
				}, nil
			}
			// Second page must carry the cursor forward.
			assert.Len(t, req.Params, 3)
			assert.Equal(t, "cursor-1", req.Params[2])
			return map[string]interface{}{
				"data":        []interface{}{ownedObjectEntry("0x2", "pkg::survey::Survey", map[string]interface{}{"title": "two"})},
				"hasNextPage": false,
			}, nil
		})
		defer server.Close()

		objects, err := testClient(server.URL).GetOwnedObjects(context.Background(), "0xowner", "pkg::survey::Survey")
		require.NoError(t, err)
		require.Len(t, objects, 2)
		assert.Equal(t, "0x1", objects[0].ObjectID)
		assert.Equal(t, "0x2", objects[1].ObjectID)
		assert.Equal(t, 2, calls)
	})

	t.Run("skips non-move objects", func(t *testing.T) {
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			return map[string]interface{}{
				"data": []interface{}{
					map[string]interface{}{
						"data": map[string]interface{}{
							"objectId": "0xpkg",
							"type":     "package",
							"content":  map[string]interface{}{"dataType": "package"},
						},
					},
					ownedObjectEntry("0x1", "pkg::survey::Survey", map[string]interface{}{"title": "kept"}),
				},
				"hasNextPage": false,
			}, nil
		})
		defer server.Close()

		objects, err := testClient(server.URL).GetOwnedObjects(context.Background(), "0xowner", "pkg::survey::Survey")
		require.NoError(t, err)
		require.Len(t, objects, 1)
		assert.Equal(t, "0x1", objects[0].ObjectID)
	})
}

func TestFieldHelpers(t *testing.T) {
	fields := map[string]interface{}{
		"title":     "hello",
		"is_open":   true,
		"count":     float64(7),
		"wide":      "1700000000000",
		"bad_wide":  "12x4",
		"options":   []interface{}{"a", "b"},
		"not_there": nil,
	}

	assert.Equal(t, "hello", fieldString(fields, "title"))
	assert.Equal(t, "", fieldString(fields, "missing"))
	assert.True(t, fieldBool(fields, "is_open"))
	assert.False(t, fieldBool(fields, "missing"))
	assert.Equal(t, int64(7), fieldInt64(fields, "count"))
	assert.Equal(t, int64(1700000000000), fieldInt64(fields, "wide"))
	assert.Equal(t, int64(0), fieldInt64(fields, "bad_wide"))
	assert.Equal(t, []string{"a", "b"}, fieldStrings(fields, "options"))
	assert.Nil(t, fieldStrings(fields, "missing"))
}

func TestGetObject(t *testing.T) {
	t.Run("decodes a move object", func(t *testing.T) {
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			assert.Equal(t, "sui_getObject", req.Method)
			assert.Equal(t, "0xobj", req.Params[0])
			return map[string]interface{}{
				"data": map[string]interface{}{
					"objectId": "0xobj",
					"type":     "pkg::survey::Survey",
					"content": map[string]interface{}{
						"dataType": "moveObject",
						"fields":   map[string]interface{}{"title": "hello"},
					},
				},
			}, nil
		})
		defer server.Close()

		obj, found, err := testClient(server.URL).GetObject(context.Background(), "0xobj")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "0xobj", obj.ObjectID)
		assert.Equal(t, "hello", fieldString(obj.Fields, "title"))
	})

	t.Run("missing object reports not found", func(t *testing.T) {
		server := newRPCServer(t, func(req rpcRequest) (interface{}, *rpcError) {
			return map[string]interface{}{
				"error": map[string]interface{}{"code": "notExists"},
			}, nil
		})
		defer server.Close()

		_, found, err := testClient(server.URL).GetObject(context.Background(), "0xmissing")
		require.NoError(t, err)
		assert.False(t, found)
	})
}
