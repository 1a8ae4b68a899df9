package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/printloom/printloom-backend/internal/logging"
)

// Stand-in for the Prodigi API during local development. The X-Mock-Outcome
// header forces failure modes: "reject" returns a 400, "unavailable" a 503.
func main() {
	logging.Init("mock-prodigi", "info", os.Getenv("APP_ENV"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
			slog.Error("failed to write health response", "error", err)
		}
	})

	mux.HandleFunc("POST /v4.0/orders", handleCreateOrder)
	mux.HandleFunc("GET /v4.0/products", handleListProducts)

	slog.Info("mock prodigi started", "addr", ":8081")
	if err := http.ListenAndServe(":8081", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	switch r.Header.Get("X-Mock-Outcome") {
	case "reject":
		http.Error(w, `{"outcome":"ValidationFailed"}`, http.StatusBadRequest)
		return
	case "unavailable":
		http.Error(w, `{"outcome":"ServerError"}`, http.StatusServiceUnavailable)
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, `{"outcome":"InvalidJson"}`, http.StatusBadRequest)
		return
	}

	orderID := fmt.Sprintf("ord_%s", uuid.NewString())
	slog.Info("mock order created", "order_id", orderID)

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"outcome": "Created",
		"order":   map[string]string{"id": orderID},
	}); err != nil {
		slog.Error("failed to write order response", "error", err)
	}
}

func handleListProducts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]any{
		"products": []map[string]any{
			{"sku": "GLOBAL-CAN-10x10", "description": "10x10 canvas print"},
			{"sku": "GLOBAL-FAP-16x24", "description": "16x24 fine art print"},
			{"sku": "GLOBAL-MUG-11OZ", "description": "11oz ceramic mug"},
		},
	}); err != nil {
		slog.Error("failed to write products response", "error", err)
	}
}
