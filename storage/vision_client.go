package storage

import (
	"context"
	"fmt"
	"os"
	"time"

	vision "cloud.google.com/go/vision/apiv1"
	pb "cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/sethvargo/go-retry"
	"google.golang.org/api/option"
)

// VisionClient performs OCR on receipt images. The Vision call is the one
// network operation in the flow worth retrying; everything downstream of it
// is deterministic.
type VisionClient struct {
	client *vision.ImageAnnotatorClient
}

func NewVisionClient(ctx context.Context) (*VisionClient, error) {
	credsJSON := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_JSON")
	if credsJSON == "" {
		return nil, fmt.Errorf("GOOGLE_APPLICATION_CREDENTIALS_JSON environment variable is not set")
	}

	client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credsJSON)))
	if err != nil {
		return nil, fmt.Errorf("failed to create Vision client: %w", err)
	}

	return &VisionClient{client: client}, nil
}

func (c *VisionClient) Close() error {
	return c.client.Close()
}

// PerformOCR extracts document text from the image bytes, retrying transient
// failures with exponential backoff.
func (c *VisionClient) PerformOCR(ctx context.Context, imageData []byte) (string, error) {
	image := &pb.Image{Content: imageData}

	var text string
	backoff := retry.WithMaxRetries(3, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()

		response, err := c.client.DetectDocumentText(callCtx, image, nil)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("failed to detect document text: %w", err))
		}
		if response == nil || response.GetText() == "" {
			return fmt.Errorf("no text detected in image")
		}
		text = response.GetText()
		return nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
