package zabbix

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"

	"github.com/shubhamdasnadas/assetwatch/pkg/logger"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := NewClient(ClientOptions{
		URL:      "http://zabbix.test",
		Username: "api",
		Password: "secret",
	}, logger.New(false))
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	httpmock.ActivateNonDefault(c.httpClient)
	t.Cleanup(httpmock.DeactivateAndReset)
	return c
}

func rpcResult(t *testing.T, result any) httpmock.Responder {
	t.Helper()
	return func(req *http.Request) (*http.Response, error) {
		return httpmock.NewJsonResponse(200, map[string]any{
			"jsonrpc": "2.0",
			"result":  result,
			"id":      1,
		})
	}
}

func decodeRequest(t *testing.T, req *http.Request) rpcRequest {
	t.Helper()
	var decoded rpcRequest
	if err := json.NewDecoder(req.Body).Decode(&decoded); err != nil {
		t.Fatalf("decoding rpc request: %v", err)
	}
	return decoded
}

func TestFetchRangeLogsInAndParsesHistory(t *testing.T) {
	c := newTestClient(t)

	logins := 0
	httpmock.RegisterResponder("POST", "http://zabbix.test/api_jsonrpc.php",
		func(req *http.Request) (*http.Response, error) {
			decoded := decodeRequest(t, req)
			switch decoded.Method {
			case "user.login":
				logins++
				return rpcResult(t, "tok-123")(req)
			case "history.get":
				if decoded.Auth != "tok-123" {
					t.Errorf("history.get auth = %q, want tok-123", decoded.Auth)
				}
				// Deliberately out of order: the client must sort.
				return rpcResult(t, []map[string]string{
					{"itemid": "42", "clock": "1700000120", "value": "2.5"},
					{"itemid": "42", "clock": "1700000060", "value": "1.5"},
					{"itemid": "42", "clock": "1700000180", "value": "3.5"},
				})(req)
			default:
				t.Fatalf("unexpected method %q", decoded.Method)
				return nil, nil
			}
		})

	points, err := c.FetchRange(context.Background(), "42", 1700000000, 1700000200)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("got %d points, want 3", len(points))
	}
	for i, want := range []int64{1700000060, 1700000120, 1700000180} {
		if points[i].Clock != want {
			t.Errorf("point %d clock = %d, want %d", i, points[i].Clock, want)
		}
	}
	if points[0].Value != 1.5 {
		t.Errorf("point 0 value = %v, want 1.5", points[0].Value)
	}
	if logins != 1 {
		t.Errorf("login called %d times, want 1", logins)
	}

	// Second fetch reuses the cached token.
	if _, err := c.FetchRange(context.Background(), "42", 1700000000, 1700000200); err != nil {
		t.Fatalf("second FetchRange: %v", err)
	}
	if logins != 1 {
		t.Errorf("login called %d times after second fetch, want 1", logins)
	}
}

func TestFetchRangeReloginsOnExpiredToken(t *testing.T) {
	c := newTestClient(t)

	logins := 0
	historyCalls := 0
	httpmock.RegisterResponder("POST", "http://zabbix.test/api_jsonrpc.php",
		func(req *http.Request) (*http.Response, error) {
			decoded := decodeRequest(t, req)
			switch decoded.Method {
			case "user.login":
				logins++
				return rpcResult(t, "tok-"+string(rune('0'+logins)))(req)
			case "history.get":
				historyCalls++
				if historyCalls == 1 {
					return httpmock.NewJsonResponse(200, map[string]any{
						"jsonrpc": "2.0",
						"error": map[string]any{
							"code":    -32602,
							"message": "Invalid params.",
							"data":    "Session terminated, re-login, please.",
						},
						"id": 1,
					})
				}
				return rpcResult(t, []map[string]string{
					{"itemid": "42", "clock": "1700000060", "value": "1"},
				})(req)
			default:
				t.Fatalf("unexpected method %q", decoded.Method)
				return nil, nil
			}
		})

	points, err := c.FetchRange(context.Background(), "42", 1700000000, 1700000200)
	if err != nil {
		t.Fatalf("FetchRange after relogin: %v", err)
	}
	if len(points) != 1 {
		t.Fatalf("got %d points, want 1", len(points))
	}
	if logins != 2 {
		t.Errorf("login called %d times, want 2 (initial + refresh)", logins)
	}
}

func TestFetchRangeSurfacesAPIErrors(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("POST", "http://zabbix.test/api_jsonrpc.php",
		func(req *http.Request) (*http.Response, error) {
			decoded := decodeRequest(t, req)
			if decoded.Method == "user.login" {
				return rpcResult(t, "tok")(req)
			}
			return httpmock.NewJsonResponse(200, map[string]any{
				"jsonrpc": "2.0",
				"error": map[string]any{
					"code":    -32500,
					"message": "Application error.",
					"data":    "No permissions to referred object",
				},
				"id": 1,
			})
		})

	if _, err := c.FetchRange(context.Background(), "42", 0, 1); err == nil {
		t.Fatal("expected API error to propagate")
	}
}

func TestFetchRangeSkipsMalformedRows(t *testing.T) {
	c := newTestClient(t)

	httpmock.RegisterResponder("POST", "http://zabbix.test/api_jsonrpc.php",
		func(req *http.Request) (*http.Response, error) {
			decoded := decodeRequest(t, req)
			if decoded.Method == "user.login" {
				return rpcResult(t, "tok")(req)
			}
			return rpcResult(t, []map[string]string{
				{"itemid": "42", "clock": "not-a-clock", "value": "1"},
				{"itemid": "42", "clock": "1700000060", "value": "nan-ish"},
				{"itemid": "42", "clock": "1700000120", "value": "7"},
			})(req)
		})

	points, err := c.FetchRange(context.Background(), "42", 0, 1800000000)
	if err != nil {
		t.Fatalf("FetchRange: %v", err)
	}
	if len(points) != 1 || points[0].Clock != 1700000120 {
		t.Fatalf("points = %+v, want only the well-formed row", points)
	}
}
