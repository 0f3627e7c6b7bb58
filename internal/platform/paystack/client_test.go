package paystack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestInitializeTransaction(t *testing.T) {
	var gotAuth, gotPath string
	var gotReq InitializeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Authorization URL created",
			"data": map[string]interface{}{
				"authorization_url": "https://checkout.paystack.com/abc123",
				"access_code":       "abc123",
				"reference":         gotReq.Reference,
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	data, err := client.InitializeTransaction(context.Background(), InitializeRequest{
		Email:     "pat@example.com",
		Amount:    500000,
		Currency:  "NGN",
		Reference: "sub_1_42",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotAuth != "Bearer sk_test_x" {
		t.Errorf("expected bearer auth, got %q", gotAuth)
	}
	if gotPath != "/transaction/initialize" {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotReq.Amount != 500000 {
		t.Errorf("expected amount 500000, got %d", gotReq.Amount)
	}
	if data.AuthorizationURL != "https://checkout.paystack.com/abc123" {
		t.Errorf("unexpected authorization URL %q", data.AuthorizationURL)
	}
	if data.Reference != "sub_1_42" {
		t.Errorf("unexpected reference %q", data.Reference)
	}
}

func TestInitializeTransaction_Failure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Invalid email address",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	_, err := client.InitializeTransaction(context.Background(), InitializeRequest{Email: "bad"})
	if err == nil {
		t.Fatal("expected error for failed initialize")
	}
	if !strings.Contains(err.Error(), "Invalid email address") {
		t.Errorf("expected API message in error, got %v", err)
	}
}

func TestVerifyTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/verify/sub_1_42" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Verification successful",
			"data": map[string]interface{}{
				"id":        4099260516,
				"status":    "success",
				"reference": "sub_1_42",
				"amount":    500000,
				"currency":  "NGN",
				"channel":   "card",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	data, err := client.VerifyTransaction(context.Background(), "sub_1_42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.Status != "success" {
		t.Errorf("expected status success, got %q", data.Status)
	}
	if data.Channel != "card" {
		t.Errorf("expected channel card, got %q", data.Channel)
	}
	if data.ID != 4099260516 {
		t.Errorf("unexpected transaction ID %d", data.ID)
	}
}

func TestVerifyTransaction_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	_, err := client.VerifyTransaction(context.Background(), "sub_1_42")
	if err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := NewClient(Config{SecretKey: "sk_test_x"})
	if client.baseURL != DefaultBaseURL {
		t.Errorf("expected default base URL, got %q", client.baseURL)
	}
	if client.httpClient.Timeout == 0 {
		t.Error("expected non-zero default timeout")
	}
}

func TestNewReference(t *testing.T) {
	ref := NewReference()
	if !strings.HasPrefix(ref, "sub_") {
		t.Errorf("expected sub_ prefix, got %q", ref)
	}
	if parts := strings.Split(ref, "_"); len(parts) != 3 {
		t.Errorf("expected three segments, got %q", ref)
	}
}

func TestGetTransaction(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/transaction/4099260516" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  true,
			"message": "Transaction retrieved",
			"data": map[string]interface{}{
				"id":        4099260516,
				"status":    "success",
				"reference": "sub_1_42",
				"amount":    500000,
				"currency":  "NGN",
				"channel":   "card",
			},
		})
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	data, err := client.GetTransaction(context.Background(), "4099260516")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data.ID != 4099260516 {
		t.Errorf("unexpected id %d", data.ID)
	}
	if data.Reference != "sub_1_42" || data.Status != "success" {
		t.Errorf("unexpected transaction %+v", data)
	}
}

func TestGetTransaction_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  false,
			"message": "Transaction not found",
		})
	}))
	defer srv.Close()

	client := NewClient(Config{SecretKey: "sk_test_x", BaseURL: srv.URL})
	_, err := client.GetTransaction(context.Background(), "999")
	if err == nil {
		t.Fatal("expected error for unknown transaction")
	}
	if !strings.Contains(err.Error(), "Transaction not found") {
		t.Errorf("expected API message in error, got %v", err)
	}
}
