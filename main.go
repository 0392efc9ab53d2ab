package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"tabsplit/logging"
	"tabsplit/persistence"
	"tabsplit/storage"
	tr "tabsplit/transport"
)

func main() {
	ctx := context.Background()

	// Missing .env is fine in deployed environments; variables come from the
	// platform there.
	_ = godotenv.Load()
	logging.Setup()

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		slog.Error("DATABASE_URL environment variable is required")
		os.Exit(1)
	}

	persistenceClient, err := persistence.NewClient(ctx, databaseURL)
	if err != nil {
		slog.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer persistenceClient.Close(ctx)

	if err := persistenceClient.RunMigrations(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database initialized")

	gcsClient, err := storage.NewGCSClient(ctx)
	if err != nil {
		slog.Error("failed to create GCS client", "error", err)
		os.Exit(1)
	}
	defer gcsClient.Close()

	visionClient, err := storage.NewVisionClient(ctx)
	if err != nil {
		slog.Error("failed to create Vision client", "error", err)
		os.Exit(1)
	}
	defer visionClient.Close()

	httpTransport := tr.NewTransport(persistenceClient, gcsClient, visionClient)

	http.HandleFunc("/receipts/image", httpTransport.UploadReceiptImageHandler)

	http.HandleFunc("/receipts", httpTransport.ListReceiptsHandler)

	http.HandleFunc("/receipts/", func(w http.ResponseWriter, r *http.Request) {
		pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

		// /receipts/{receipt_id}/{action}
		if len(pathParts) == 3 && pathParts[0] == "receipts" {
			switch pathParts[2] {
			case "participants":
				httpTransport.SetParticipantsHandler(w, r)
			case "shared-items":
				httpTransport.SetSharedItemsHandler(w, r)
			case "allocation":
				httpTransport.SetAllocationHandler(w, r)
			case "tip":
				httpTransport.SetTipHandler(w, r)
			case "settle":
				httpTransport.SettleHandler(w, r)
			default:
				http.NotFound(w, r)
			}
			return
		}

		// GET /receipts/{receipt_id} - full receipt with items, participants,
		// allocation, and payments
		if len(pathParts) == 2 && pathParts[0] == "receipts" {
			httpTransport.GetReceiptHandler(w, r)
			return
		}

		http.NotFound(w, r)
	})

	http.HandleFunc("/healthz", httpTransport.HealthHandler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port

	slog.Info("server starting", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
