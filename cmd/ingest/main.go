package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/CHOISC1208/psi-erp/internal/cache"
	"github.com/CHOISC1208/psi-erp/internal/config"
	"github.com/CHOISC1208/psi-erp/internal/repository/postgres"
	"github.com/CHOISC1208/psi-erp/internal/service"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
)

// Standalone bulk-ingest endpoint. Batch loaders POST raw CSV here without
// going through the main API's multipart handling or its CORS setup.
func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	psiService := service.NewPSIService(postgres.NewPSIRepository(db), cache.NewNoopMatrixCache())

	r := mux.NewRouter()
	r.HandleFunc("/ingest/sessions/{session_id}/base", handleIngestBase(psiService)).Methods("POST")

	// Health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}

func handleIngestBase(psiService *service.PSIService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()

		sessionID, err := uuid.Parse(mux.Vars(r)["session_id"])
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session_id"})
			return
		}

		count, err := psiService.ImportBaseCSV(r.Context(), sessionID, r.Body)
		if err != nil {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"session_id": sessionID,
			"rows":       count,
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
