package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vmweaver/vmweaver/pkg/config"
	"github.com/vmweaver/vmweaver/pkg/engine"
	"github.com/vmweaver/vmweaver/pkg/providers"
	"github.com/vmweaver/vmweaver/pkg/stores"
	"github.com/vmweaver/vmweaver/pkg/telemetry"
)

// setupTestServer wires the full stack over an in-memory store.
func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{
		Level:  "error",
		Format: "json",
		Output: "stderr",
	})
	if err != nil {
		t.Fatalf("failed to create logger: %v", err)
	}

	store, err := stores.NewSQLiteStore(stores.Config{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	ctx := context.Background()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	orch := engine.NewOrchestrator(providers.NewRegistry(), store, logger, nil)
	srv := NewServer(config.ServerConfig{
		ListenAddress:   ":0",
		DefaultPageSize: 100,
		MaxPageSize:     1000,
	}, orch, logger, nil)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return resp, buf.Bytes()
}

func provisionVM(t *testing.T, baseURL string, provider engine.ProviderType, params engine.Parameters) string {
	t.Helper()

	resp, body := doJSON(t, http.MethodPost, baseURL+"/api/v1/vm/provision", engine.Request{
		Provider:   provider,
		Parameters: params,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("provision returned status %d: %s", resp.StatusCode, body)
	}
	var result engine.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != engine.ResultSuccess {
		t.Fatalf("provision failed: %s", result.ErrorMessage)
	}
	return result.VMID
}

func awsParams() engine.Parameters {
	return engine.Parameters{
		"instance_type": "t2.micro",
		"region":        "us-east-1",
		"vpc":           "vpc-123",
		"ami":           "ami-456",
	}
}

func TestRootEndpointIndex(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var index struct {
		Service   string            `json:"service"`
		Endpoints map[string]string `json:"endpoints"`
	}
	if err := json.Unmarshal(body, &index); err != nil {
		t.Fatalf("failed to decode index: %v", err)
	}
	if index.Service != "vmweaver" {
		t.Errorf("expected service vmweaver, got %q", index.Service)
	}
	if _, ok := index.Endpoints["provision"]; !ok {
		t.Error("expected endpoint index to list provision")
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"healthy"`) {
		t.Errorf("expected healthy status, got %s", body)
	}
}

func TestProvisionEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/vm/provision", engine.Request{
		Provider:   engine.ProviderAWS,
		Parameters: awsParams(),
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}

	var result engine.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != engine.ResultSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Status, result.ErrorMessage)
	}
	if !strings.HasPrefix(result.VMID, "i-") {
		t.Errorf("expected AWS vm_id prefix i-, got %q", result.VMID)
	}
	if !strings.HasPrefix(result.RequestID, "req_") {
		t.Errorf("expected request_id prefix req_, got %q", result.RequestID)
	}

	// Round trip via GET by id.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/"+result.VMID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 fetching created VM, got %d", resp.StatusCode)
	}
	var vm engine.VMRecord
	if err := json.Unmarshal(body, &vm); err != nil {
		t.Fatalf("failed to decode VM: %v", err)
	}
	if vm.Status != engine.StatusPending {
		t.Errorf("expected pending status, got %s", vm.Status)
	}
	if vm.Parameters["instance_type"] != "t2.micro" {
		t.Errorf("expected instance_type t2.micro, got %v", vm.Parameters["instance_type"])
	}
}

func TestProvisionMissingParameter(t *testing.T) {
	ts := setupTestServer(t)

	params := awsParams()
	delete(params, "ami")
	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/vm/provision", engine.Request{
		Provider:   engine.ProviderAWS,
		Parameters: params,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", resp.StatusCode)
	}

	var result engine.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != engine.ResultError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	want := "Invalid parameters for AWS: missing 'ami'"
	if result.ErrorMessage != want {
		t.Errorf("expected %q, got %q", want, result.ErrorMessage)
	}
	if result.VMID != "" {
		t.Errorf("expected empty vm_id on error, got %q", result.VMID)
	}
}

func TestProvisionUnsupportedProvider(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodPost, ts.URL+"/api/v1/vm/provision", map[string]any{
		"provider_type": "oracle",
		"parameters":    map[string]any{"shape": "small"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 envelope, got %d", resp.StatusCode)
	}

	var result engine.Result
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
	if result.Status != engine.ResultError {
		t.Fatalf("expected error status, got %s", result.Status)
	}
	if result.ErrorMessage != "Unsupported provider: oracle" {
		t.Errorf("unexpected message %q", result.ErrorMessage)
	}
}

func TestProvisionMalformedBody(t *testing.T) {
	ts := setupTestServer(t)

	resp, err := http.Post(ts.URL+"/api/v1/vm/provision", "application/json", strings.NewReader("{not json"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestListVMsEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	for i := 0; i < 3; i++ {
		provisionVM(t, ts.URL, engine.ProviderAWS, awsParams())
	}
	provisionVM(t, ts.URL, engine.ProviderGCP, engine.Parameters{
		"machine_type": "e2-micro",
		"zone":         "us-central1-a",
		"project_id":   "demo",
		"disk_size_gb": 20,
	})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.TotalVMs != 4 {
		t.Errorf("expected 4 VMs, got %d", list.TotalVMs)
	}
	if list.VMsByProvider[engine.ProviderAWS] != 3 {
		t.Errorf("expected 3 aws VMs, got %d", list.VMsByProvider[engine.ProviderAWS])
	}
	if list.VMsByProvider[engine.ProviderGCP] != 1 {
		t.Errorf("expected 1 gcp VM, got %d", list.VMsByProvider[engine.ProviderGCP])
	}

	// Pagination.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms?limit=2&offset=1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.TotalVMs != 2 {
		t.Errorf("expected 2 VMs on page, got %d", list.TotalVMs)
	}
}

func TestListVMsRejectsBadPagination(t *testing.T) {
	ts := setupTestServer(t)

	for _, query := range []string{"?limit=0", "?limit=abc", "?offset=-1"} {
		resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms"+query, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("query %q: expected 400, got %d", query, resp.StatusCode)
		}
	}
}

func TestVMsByProviderEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	id := provisionVM(t, ts.URL, engine.ProviderAzure, engine.Parameters{
		"vm_size":        "Standard_B1s",
		"resource_group": "rg-demo",
		"location":       "eastus",
		"image":          "UbuntuLTS",
	})
	provisionVM(t, ts.URL, engine.ProviderAWS, awsParams())

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/provider/azure", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var byProvider providerVMsResponse
	if err := json.Unmarshal(body, &byProvider); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if byProvider.ProviderType != engine.ProviderAzure {
		t.Errorf("expected provider_type azure, got %s", byProvider.ProviderType)
	}
	if byProvider.TotalVMs != 1 || byProvider.VMs[0].ID != id {
		t.Errorf("expected exactly the azure VM %s, got %+v", id, byProvider.VMs)
	}

	// Status filter excludes non-matching records.
	resp, body = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/provider/azure?status=running", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if err := json.Unmarshal(body, &byProvider); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if byProvider.TotalVMs != 0 {
		t.Errorf("expected no running azure VMs, got %d", byProvider.TotalVMs)
	}

	// Unknown provider and unknown status filter.
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/provider/oracle", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown provider, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/provider/azure?status=sleeping", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status filter, got %d", resp.StatusCode)
	}
}

func TestVMsByStatusEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	provisionVM(t, ts.URL, engine.ProviderAWS, awsParams())

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/status/pending", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var list listResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("failed to decode list: %v", err)
	}
	if list.TotalVMs != 1 {
		t.Errorf("expected 1 pending VM, got %d", list.TotalVMs)
	}

	resp, _ = doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/status/hibernating", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}
}

func TestGetVMNotFound(t *testing.T) {
	ts := setupTestServer(t)

	resp, _ := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms/i-deadbeef", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

func TestUpdateStatusEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	id := provisionVM(t, ts.URL, engine.ProviderAWS, awsParams())
	url := fmt.Sprintf("%s/api/v1/vms/%s/status", ts.URL, id)

	resp, body := doJSON(t, http.MethodPut, url, statusUpdateRequest{NewStatus: engine.StatusRunning})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var vm engine.VMRecord
	if err := json.Unmarshal(body, &vm); err != nil {
		t.Fatalf("failed to decode VM: %v", err)
	}
	if vm.Status != engine.StatusRunning {
		t.Errorf("expected running, got %s", vm.Status)
	}

	// running -> pending is not a legal transition.
	resp, _ = doJSON(t, http.MethodPut, url, statusUpdateRequest{NewStatus: engine.StatusPending})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409 for illegal transition, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, url, map[string]string{"new_status": "exploded"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for unknown status, got %d", resp.StatusCode)
	}

	resp, _ = doJSON(t, http.MethodPut, ts.URL+"/api/v1/vms/i-missing/status", statusUpdateRequest{NewStatus: engine.StatusRunning})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404 for unknown VM, got %d", resp.StatusCode)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	provisionVM(t, ts.URL, engine.ProviderAWS, awsParams())
	provisionVM(t, ts.URL, engine.ProviderOnPremise, engine.Parameters{
		"cpu_cores":  4,
		"ram_gb":     16,
		"storage_gb": 100,
	})

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/v1/vms-summary", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var summary engine.Summary
	if err := json.Unmarshal(body, &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Total != 2 {
		t.Errorf("expected total 2, got %d", summary.Total)
	}
	if summary.ByStatus[engine.StatusPending] != 2 {
		t.Errorf("expected 2 pending, got %d", summary.ByStatus[engine.StatusPending])
	}
	if len(summary.Recent) != 2 {
		t.Errorf("expected 2 recent records, got %d", len(summary.Recent))
	}
}

func TestProvidersEndpoint(t *testing.T) {
	ts := setupTestServer(t)

	resp, body := doJSON(t, http.MethodGet, ts.URL+"/api/v1/providers", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var infos []engine.ProviderInfo
	if err := json.Unmarshal(body, &infos); err != nil {
		t.Fatalf("failed to decode providers: %v", err)
	}
	if len(infos) != 4 {
		t.Fatalf("expected 4 providers, got %d", len(infos))
	}
	for _, info := range infos {
		if len(info.RequiredParameters) == 0 {
			t.Errorf("provider %s reports no required parameters", info.Type)
		}
	}
}
