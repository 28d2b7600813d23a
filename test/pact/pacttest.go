//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "marketplace-api"
	ConsumerName = "marketplace-web"

	StateCatalogStocked  = "customer 8f0c and a stocked catalog exist"
	StateCustomerMissing = "no customer with id 0d1e exists"
	StateStockExhausted  = "customer 8f0c exists and the keyboard has 1 unit left"
	StateOrderExists     = "order 5b6a exists"
	StateOrderMissing    = "no order with id 9c9c exists"
)

const (
	ExistingCustomerID = "8f0c7e52-4f43-4c55-9a1a-0c5d3e4a2b11"
	MissingCustomerID  = "0d1e2f30-4a5b-4c6d-8e9f-a0b1c2d3e4f5"
	KeyboardID         = "3a7d1c9e-2b4f-4e6a-8c0d-1f2e3d4c5b6a"
	MouseID            = "6b5c4d3e-2f1a-4b0c-9d8e-7f6a5b4c3d2e"
	ExistingOrderID    = "5b6a7c8d-9e0f-4a1b-8c2d-3e4f5a6b7c8d"
	MissingOrderID     = "9c9c9c9c-1d2e-4f3a-8b4c-5d6e7f8a9b0c"

	KeyboardPrice = "10.00"
	MousePrice    = "20.00"
)

// UUIDPattern matches the canonical textual form of a UUID.
const UUIDPattern = `^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the web consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlaceOrderPayload orders keyboards for customerID.
func ExamplePlaceOrderPayload(customerID string, keyboards int) map[string]any {
	return map[string]any{
		"customer_id": customerID,
		"products": []map[string]any{
			{"id": KeyboardID, "quantity": keyboards},
		},
	}
}

func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
