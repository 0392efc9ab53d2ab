package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"
)

type geminiReceiptItem struct {
	Name         string   `json:"name"`
	Quantity     int      `json:"quantity"`
	TotalPrice   *float64 `json:"total_price,omitempty"`
	PricePerItem *float64 `json:"price_per_item,omitempty"`
}

type geminiReceiptData struct {
	Merchant *string             `json:"merchant"`
	Currency *string             `json:"currency"`
	Date     *string             `json:"date"`
	Subtotal *float64            `json:"subtotal"`
	Tax      *float64            `json:"tax"`
	Tip      *float64            `json:"tip"`
	Total    *float64            `json:"total"`
	Items    []geminiReceiptItem `json:"items"`
}

// ParseReceiptTextWithGemini turns raw OCR text into a structured receipt
// using Gemini. It is the fallback when Document AI is unavailable or finds
// no line items.
func ParseReceiptTextWithGemini(ctx context.Context, ocrText string) (*ParsedReceipt, error) {
	if strings.TrimSpace(ocrText) == "" {
		return nil, fmt.Errorf("ocr text is empty")
	}

	credsJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	if credsJSON == "" {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_JSON environment variable is not set")
	}

	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		projectID = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if projectID == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID environment variable is not set")
	}

	location := os.Getenv("VERTEX_AI_LOCATION")
	if location == "" {
		location = "us-central1"
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: []byte(credsJSON),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load Google credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:     projectID,
		Location:    location,
		Backend:     genai.BackendVertexAI,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	prompt := fmt.Sprintf(`You are parsing OCR text from a restaurant receipt.
Return ONLY valid JSON with this schema:
{
  "merchant": "string or null",
  "currency": "ISO 4217 code or null",
  "date": "YYYY-MM-DD or null",
  "subtotal": 1.23,
  "tax": 1.23,
  "tip": 1.23,
  "total": 1.23,
  "items": [
    {"name": "string", "quantity": 1, "total_price": 1.23, "price_per_item": 1.23}
  ]
}
Rules:
- Include only purchased line items (exclude tax, totals, payment, change, headers, footers).
- If quantity is missing, use 1.
- Set any value you cannot find to null.

Receipt OCR text:
---
%s
---`, ocrText)

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(0.1)),
		TopP:            genai.Ptr(float32(0.95)),
		TopK:            genai.Ptr(float32(40)),
		MaxOutputTokens: 2048,
	}
	resp, err := client.Models.GenerateContent(ctx, "gemini-2.0-flash-001", genai.Text(prompt), config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	responseText := ""
	if resp != nil {
		responseText = strings.TrimSpace(resp.Text())
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var parsed geminiReceiptData
	if err := json.Unmarshal([]byte(cleanGeminiJSON(responseText)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse Gemini JSON: %w", err)
	}

	result := &ParsedReceipt{
		Text:        ocrText,
		Merchant:    parsed.Merchant,
		Currency:    parsed.Currency,
		ReceiptDate: parsed.Date,
		Subtotal:    parsed.Subtotal,
		Tax:         parsed.Tax,
		Tip:         parsed.Tip,
		Total:       parsed.Total,
	}

	for _, item := range parsed.Items {
		name := strings.TrimSpace(item.Name)
		if name == "" {
			continue
		}
		if item.TotalPrice == nil && item.PricePerItem == nil {
			continue
		}

		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}

		var amount, unitPrice float64
		switch {
		case item.TotalPrice == nil:
			unitPrice = *item.PricePerItem
			amount = unitPrice * float64(qty)
		case item.PricePerItem == nil:
			amount = *item.TotalPrice
			unitPrice = amount / float64(qty)
		default:
			amount = *item.TotalPrice
			unitPrice = *item.PricePerItem
		}

		if amount <= 0 || unitPrice <= 0 {
			continue
		}

		result.Items = append(result.Items, ParsedItem{
			Description: name,
			Quantity:    qty,
			Amount:      amount,
			UnitPrice:   unitPrice,
		})
	}

	return result, nil
}

func cleanGeminiJSON(input string) string {
	cleaned := strings.TrimSpace(input)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end >= start {
		return cleaned[start : end+1]
	}

	return cleaned
}
