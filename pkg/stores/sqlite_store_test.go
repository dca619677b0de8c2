package stores

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/vmweaver/vmweaver/pkg/engine"
)

// setupTestStore creates an in-memory SQLite store for testing.
func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(Config{Path: ":memory:"})
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
	return store
}

// newTestVM builds a record with a distinct creation time per sequence
// number so list ordering is deterministic.
func newTestVM(id string, provider engine.ProviderType, seq int) *engine.VMRecord {
	created := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(seq) * time.Second)
	return &engine.VMRecord{
		ID:       id,
		Provider: provider,
		Status:   engine.StatusPending,
		Parameters: engine.Parameters{
			"instance_type": "t2.micro",
			"region":        "us-east-1",
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func TestStoreLifecycle(t *testing.T) {
	store := setupTestStore(t)

	if err := store.HealthCheck(context.Background()); err != nil {
		t.Fatalf("health check failed: %v", err)
	}
}

func TestCreateAndGetVM(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vm := newTestVM("i-abc123", engine.ProviderAWS, 0)
	vm.Parameters["vpc"] = "vpc-1"
	vm.Parameters["ami"] = "ami-1"

	if err := store.CreateVM(ctx, vm); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := store.GetVM(ctx, "i-abc123")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Provider != engine.ProviderAWS {
		t.Errorf("provider = %s", got.Provider)
	}
	if got.Status != engine.StatusPending {
		t.Errorf("status = %s", got.Status)
	}
	if got.Parameters["vpc"] != "vpc-1" {
		t.Errorf("parameters not round-tripped: %v", got.Parameters)
	}
	if !got.CreatedAt.Equal(vm.CreatedAt) {
		t.Errorf("created_at = %v, want %v", got.CreatedAt, vm.CreatedAt)
	}
}

func TestGetVMNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.GetVM(context.Background(), "i-missing")
	if !engine.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestCreateVMDuplicateID(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vm := newTestVM("i-dup", engine.ProviderAWS, 0)
	if err := store.CreateVM(ctx, vm); err != nil {
		t.Fatalf("first create: %v", err)
	}

	err := store.CreateVM(ctx, newTestVM("i-dup", engine.ProviderAWS, 1))
	if engine.CodeOf(err) != engine.ErrCodeDuplicateID {
		t.Fatalf("expected DUPLICATE_ID, got %v", err)
	}
}

func TestListVMsOrderAndPagination(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		vm := newTestVM(fmt.Sprintf("i-%d", i), engine.ProviderAWS, i)
		if err := store.CreateVM(ctx, vm); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	vms, err := store.ListVMs(ctx, 100, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(vms) != 5 {
		t.Fatalf("len = %d", len(vms))
	}
	// Most recent first.
	for i, want := range []string{"i-4", "i-3", "i-2", "i-1", "i-0"} {
		if vms[i].ID != want {
			t.Errorf("vms[%d] = %s, want %s", i, vms[i].ID, want)
		}
	}

	page, err := store.ListVMs(ctx, 2, 1)
	if err != nil {
		t.Fatalf("paginated list: %v", err)
	}
	if len(page) != 2 || page[0].ID != "i-3" || page[1].ID != "i-2" {
		t.Errorf("unexpected page: %v, %v", page[0].ID, page[1].ID)
	}
}

func TestFilterByProviderMatchesListOrder(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	providers := []engine.ProviderType{
		engine.ProviderAWS,
		engine.ProviderGCP,
		engine.ProviderAWS,
		engine.ProviderAzure,
		engine.ProviderAWS,
	}
	for i, p := range providers {
		if err := store.CreateVM(ctx, newTestVM(fmt.Sprintf("vm-%d", i), p, i)); err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
	}

	all, err := store.ListVMs(ctx, 100, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var wantAWS []string
	for _, vm := range all {
		if vm.Provider == engine.ProviderAWS {
			wantAWS = append(wantAWS, vm.ID)
		}
	}

	aws, err := store.ListVMsByProvider(ctx, engine.ProviderAWS, nil)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(aws) != len(wantAWS) {
		t.Fatalf("len = %d, want %d", len(aws), len(wantAWS))
	}
	for i := range aws {
		if aws[i].ID != wantAWS[i] {
			t.Errorf("aws[%d] = %s, want %s (relative order must match list)", i, aws[i].ID, wantAWS[i])
		}
	}
}

func TestFilterByProviderWithStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateVM(ctx, newTestVM("vm-a", engine.ProviderAWS, 0)); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateVM(ctx, newTestVM("vm-b", engine.ProviderAWS, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpdateVMStatus(ctx, "vm-b", engine.StatusRunning); err != nil {
		t.Fatal(err)
	}

	running := engine.StatusRunning
	vms, err := store.ListVMsByProvider(ctx, engine.ProviderAWS, &running)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(vms) != 1 || vms[0].ID != "vm-b" {
		t.Errorf("unexpected result: %+v", vms)
	}
}

func TestFilterByStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateVM(ctx, newTestVM("vm-a", engine.ProviderAWS, 0)); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateVM(ctx, newTestVM("vm-b", engine.ProviderGCP, 1)); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpdateVMStatus(ctx, "vm-a", engine.StatusRunning); err != nil {
		t.Fatal(err)
	}

	pending, err := store.ListVMsByStatus(ctx, engine.StatusPending)
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != "vm-b" {
		t.Errorf("unexpected result: %+v", pending)
	}
}

func TestUpdateVMStatus(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	vm := newTestVM("vm-a", engine.ProviderAWS, 0)
	if err := store.CreateVM(ctx, vm); err != nil {
		t.Fatal(err)
	}

	updated, err := store.UpdateVMStatus(ctx, "vm-a", engine.StatusRunning)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Status != engine.StatusRunning {
		t.Errorf("status = %s", updated.Status)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Errorf("updated_at not refreshed: %v <= %v", updated.UpdatedAt, updated.CreatedAt)
	}

	// Only status and updated_at may change.
	got, err := store.GetVM(ctx, "vm-a")
	if err != nil {
		t.Fatal(err)
	}
	if !got.CreatedAt.Equal(vm.CreatedAt) {
		t.Errorf("created_at changed: %v", got.CreatedAt)
	}
	if got.Provider != vm.Provider {
		t.Errorf("provider changed: %v", got.Provider)
	}
	if got.Parameters["instance_type"] != "t2.micro" {
		t.Errorf("parameters changed: %v", got.Parameters)
	}
}

func TestUpdateVMStatusNotFound(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.UpdateVMStatus(context.Background(), "vm-missing", engine.StatusRunning)
	if !engine.IsNotFound(err) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestUpdateVMStatusInvalidTransition(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	if err := store.CreateVM(ctx, newTestVM("vm-a", engine.ProviderAWS, 0)); err != nil {
		t.Fatal(err)
	}

	// pending -> stopped is not in the transition table.
	_, err := store.UpdateVMStatus(ctx, "vm-a", engine.StatusStopped)
	if !engine.IsInvalidTransition(err) {
		t.Fatalf("expected INVALID_TRANSITION, got %v", err)
	}

	// Terminated is terminal.
	if _, err := store.UpdateVMStatus(ctx, "vm-a", engine.StatusTerminated); err != nil {
		t.Fatal(err)
	}
	_, err = store.UpdateVMStatus(ctx, "vm-a", engine.StatusRunning)
	if !engine.IsInvalidTransition(err) {
		t.Fatalf("expected INVALID_TRANSITION from terminated, got %v", err)
	}
}

func TestSummaryInvariants(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	providers := []engine.ProviderType{
		engine.ProviderAWS, engine.ProviderAWS, engine.ProviderGCP,
		engine.ProviderAzure, engine.ProviderOnPremise, engine.ProviderGCP,
	}
	for i, p := range providers {
		if err := store.CreateVM(ctx, newTestVM(fmt.Sprintf("vm-%d", i), p, i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.UpdateVMStatus(ctx, "vm-0", engine.StatusRunning); err != nil {
		t.Fatal(err)
	}
	if _, err := store.UpdateVMStatus(ctx, "vm-1", engine.StatusTerminated); err != nil {
		t.Fatal(err)
	}

	summary, err := store.Summary(ctx, 3)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}

	if summary.Total != 6 {
		t.Errorf("total = %d", summary.Total)
	}
	byProvider := 0
	for _, n := range summary.ByProvider {
		byProvider += n
	}
	byStatus := 0
	for _, n := range summary.ByStatus {
		byStatus += n
	}
	if byProvider != summary.Total || byStatus != summary.Total {
		t.Errorf("count sums diverge: provider=%d status=%d total=%d", byProvider, byStatus, summary.Total)
	}
	if summary.ByProvider[engine.ProviderAWS] != 2 {
		t.Errorf("aws count = %d", summary.ByProvider[engine.ProviderAWS])
	}
	if summary.ByStatus[engine.StatusPending] != 4 {
		t.Errorf("pending count = %d", summary.ByStatus[engine.StatusPending])
	}
	if len(summary.Recent) != 3 {
		t.Errorf("recent len = %d", len(summary.Recent))
	}
	if summary.Recent[0].ID != "vm-5" {
		t.Errorf("recent[0] = %s", summary.Recent[0].ID)
	}
}
