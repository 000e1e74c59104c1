package httpserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	witnessconsensus "github.com/Philip38-hub/OYA-sub000/contexts/election-core/witness-consensus"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/messaging"
	"github.com/Philip38-hub/OYA-sub000/internal/platform/push"
)

func newTestServer(t *testing.T) (*httptest.Server, *push.Hub) {
	t.Helper()
	bus := messaging.NewBus(nil)
	hub := push.NewHub(nil)
	module := witnessconsensus.NewInMemoryModule(witnessconsensus.Dependencies{
		Events:     bus,
		Subscriber: bus,
		Push:       hub,
	}, nil)
	server := New(module, hub, nil, ":0")
	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)
	return ts, hub
}

func postJSON(t *testing.T, url string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func putEmpty(t *testing.T, url string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPut, url, nil)
	if err != nil {
		t.Fatalf("build put request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("put %s: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createProcessRequest() map[string]any {
	return map[string]any{
		"title":    "Presidential Election 2027",
		"position": "President",
		"candidates": []map[string]string{
			{"id": "c1", "name": "Alice"},
			{"id": "c2", "name": "Bob"},
		},
		"pollingStations": []string{"st-001", "st-002"},
	}
}

func TestCreateStartSubmitTallyFlow(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/voting-process", createProcessRequest())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", resp.StatusCode)
	}
	var created struct {
		Success       bool `json:"success"`
		VotingProcess struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"voting_process"`
	}
	decodeJSON(t, resp, &created)
	if !created.Success || created.VotingProcess.Status != "setup" {
		t.Fatalf("unexpected create response: %+v", created)
	}
	processID := created.VotingProcess.ID

	resp = putEmpty(t, ts.URL+"/voting-process/"+processID+"/start")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("start: expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	for i := 1; i <= 3; i++ {
		resp = postJSON(t, ts.URL+"/submitResult", map[string]any{
			"walletAddress":    fmt.Sprintf("wallet-%d", i),
			"pollingStationId": "st-001",
			"gpsCoordinates":   map[string]float64{"latitude": -1.29, "longitude": 36.82},
			"timestamp":        time.Now().UTC().Add(-time.Minute).Format(time.RFC3339),
			"results":          map[string]int{"Alice": 120, "Bob": 80, "spoilt": 3},
			"submissionType":   "manual",
			"confidence":       1,
		})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("submit %d: expected 200, got %d", i, resp.StatusCode)
		}
		var submitted struct {
			Consensus struct {
				Status string `json:"status"`
			} `json:"consensus"`
		}
		decodeJSON(t, resp, &submitted)
		if i == 3 && submitted.Consensus.Status != "verified" {
			t.Fatalf("third witness must verify, got %s", submitted.Consensus.Status)
		}
	}

	resp, err := http.Get(ts.URL + "/getTally/" + processID)
	if err != nil {
		t.Fatalf("get tally: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tally: expected 200, got %d", resp.StatusCode)
	}
	var tally struct {
		AggregatedTally map[string]int `json:"aggregatedTally"`
		VerifiedCount   int            `json:"verifiedCount"`
	}
	decodeJSON(t, resp, &tally)
	if tally.AggregatedTally["Alice"] != 120 || tally.VerifiedCount != 1 {
		t.Fatalf("unexpected tally: %+v", tally)
	}
}

func TestErrorMapping(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Post(ts.URL+"/voting-process", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("post invalid json: %v", err)
	}
	var body struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid json: expected 400, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &body)
	if body.Code != "INVALID_JSON" {
		t.Fatalf("expected INVALID_JSON, got %s", body.Code)
	}

	resp = postJSON(t, ts.URL+"/voting-process", map[string]any{"title": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("validation: expected 400, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &body)
	if body.Code != "VALIDATION_ERROR" || len(body.Details) == 0 {
		t.Fatalf("expected VALIDATION_ERROR with details, got %+v", body)
	}

	resp, err = http.Get(ts.URL + "/voting-process/missing")
	if err != nil {
		t.Fatalf("get missing process: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("missing process: expected 404, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &body)
	if body.Code != "PROCESS_NOT_FOUND" {
		t.Fatalf("expected PROCESS_NOT_FOUND, got %s", body.Code)
	}

	resp = putEmpty(t, ts.URL+"/voting-process/missing/close")
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("close missing: expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestTallyStreamSendsSnapshotOnConnect(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/voting-process", createProcessRequest())
	var created struct {
		VotingProcess struct {
			ID string `json:"id"`
		} `json:"voting_process"`
	}
	decodeJSON(t, resp, &created)

	stream, err := http.Get(ts.URL + "/tally-stream/" + created.VotingProcess.ID)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer stream.Body.Close()
	if got := stream.Header.Get("Content-Type"); got != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", got)
	}

	line, err := bufio.NewReader(stream.Body).ReadString('\n')
	if err != nil {
		t.Fatalf("read snapshot frame: %v", err)
	}
	if !strings.HasPrefix(line, "data: ") {
		t.Fatalf("expected SSE data frame, got %q", line)
	}
	var frame struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(line), "data: ")), &frame); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if frame.Type != "tally_update" {
		t.Fatalf("expected tally_update snapshot, got %q", frame.Type)
	}
}

func TestTallyStreamUnknownProcess(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/tally-stream/missing")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown process, got %d", resp.StatusCode)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, hub := newTestServer(t)
	sub := hub.Subscribe("proc-x")
	defer hub.Unsubscribe(sub)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d", resp.StatusCode)
	}
	var stats struct {
		Status string `json:"status"`
		Push   struct {
			TotalSubscribers int `json:"total_subscribers"`
		} `json:"push"`
	}
	decodeJSON(t, resp, &stats)
	if stats.Status != "ok" || stats.Push.TotalSubscribers != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
