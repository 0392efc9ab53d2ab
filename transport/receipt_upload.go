package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"tabsplit/money"
	"tabsplit/persistence"
	"tabsplit/storage"
)

// UploadReceiptImageHandler handles receipt image uploads.
// Expects multipart/form-data with:
//   - "image": the receipt image file
//
// Stores the image, runs the parsing pipeline, and returns the stored
// receipt with its parsed line items.
func (t *Transport) UploadReceiptImageHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	receiptID := persistence.GenerateReceiptID()

	file, contentType, err := t.validateReceiptImageRequest(w, r)
	if err != nil {
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to read image file: %v", err), http.StatusInternalServerError)
		return
	}

	imageURL, err := t.gcsClient.UploadReceiptImage(ctx, bytes.NewReader(fileData), receiptID, contentType)
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to upload image: %v", err), http.StatusInternalServerError)
		return
	}

	parsed := t.parseReceiptImage(ctx, fileData, contentType)

	newReceipt := persistence.NewReceipt{
		ID:          receiptID,
		ImageURL:    &imageURL,
		Merchant:    parsed.Merchant,
		Currency:    parsed.Currency,
		ReceiptDate: parsed.ReceiptDate,
		Subtotal:    parsed.Subtotal,
		Tax:         parsed.Tax,
		TipAmount:   parsed.Tip,
	}
	if parsed.Text != "" {
		newReceipt.OCRText = &parsed.Text
	}
	for _, item := range parsed.Items {
		newReceipt.Items = append(newReceipt.Items, persistence.NewReceiptItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			Amount:      item.Amount,
			UnitPrice:   item.UnitPrice,
		})
	}

	saved, err := t.persistenceClient.SaveReceipt(ctx, newReceipt)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, UploadReceiptResponse{
		ReceiptID: saved.ID,
		ImageURL:  saved.ImageURL,
		Merchant:  saved.Merchant,
		Currency:  saved.Currency,
		Subtotal:  money.Ptr(saved.Subtotal, saved.Currency),
		Tax:       money.Ptr(saved.Tax, saved.Currency),
		Tip:       money.Ptr(saved.TipAmount, saved.Currency),
		Items:     toItemResponses(saved.Items, saved.Currency),
		OCRText:   saved.OCRText,
	})
}

// parseReceiptImage runs the parsing pipeline: Document AI first, then Vision
// OCR fed through Gemini, then the plain text extractor. Each stage only runs
// when the previous one produced no line items, and a dead end still returns
// whatever partial fields were recovered so the upload succeeds.
func (t *Transport) parseReceiptImage(ctx context.Context, fileData []byte, contentType string) *storage.ParsedReceipt {
	parsed, err := storage.ProcessReceiptWithDocumentAI(ctx, fileData, contentType)
	if err != nil {
		slog.Warn("document ai processing failed", "error", err)
	} else if len(parsed.Items) > 0 {
		return parsed
	}

	ocrText, err := t.visionClient.PerformOCR(ctx, fileData)
	if err != nil {
		slog.Warn("vision ocr failed", "error", err)
		if parsed != nil {
			return parsed
		}
		return &storage.ParsedReceipt{}
	}

	geminiParsed, err := storage.ParseReceiptTextWithGemini(ctx, ocrText)
	if err != nil {
		slog.Warn("gemini parse failed", "error", err)
	} else if len(geminiParsed.Items) > 0 {
		return geminiParsed
	}

	return storage.ParseReceiptText(ocrText)
}

func (t *Transport) validateReceiptImageRequest(w http.ResponseWriter, r *http.Request) (file io.ReadCloser, contentType string, err error) {
	if r.Method != http.MethodPost {
		err = NewInvalidMethodError(r.Method)
		http.Error(w, err.Error(), http.StatusMethodNotAllowed)
		return nil, "", err
	}

	err = r.ParseMultipartForm(10 << 20) // 10MB
	if err != nil {
		validationErr := NewValidationError("form", fmt.Sprintf("failed to parse multipart form: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return nil, "", validationErr
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		validationErr := NewValidationError("image", fmt.Sprintf("failed to get image file: %v", err))
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return nil, "", validationErr
	}

	if header.Size > 10<<20 {
		validationErr := NewValidationError("image", "image file too large (max 10MB)")
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
		return nil, "", validationErr
	}

	contentType = header.Header.Get("Content-Type")
	if contentType != "" {
		validTypes := map[string]bool{
			"image/jpeg": true,
			"image/jpg":  true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		}
		if !validTypes[contentType] {
			validationErr := NewValidationError("image", fmt.Sprintf("invalid image type: %s", contentType))
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return nil, "", validationErr
		}
	}
	return file, contentType, nil
}
