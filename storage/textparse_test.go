package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReceiptText(t *testing.T) {
	ocrText := `JOE'S DINER
123 Main Street
----------------
BURGER 12.50
FRIES 2 8.00
2x COLA 5.00
SUB TOTAL 25.50
TAX 2.17
TIP 4.00
TOTAL 31.67
THANK YOU FOR VISITING
CARD **** 1234`

	result := ParseReceiptText(ocrText)

	require.NotNil(t, result.Merchant)
	assert.Equal(t, "JOE'S DINER", *result.Merchant)

	require.Len(t, result.Items, 3)
	assert.Equal(t, ParsedItem{Description: "BURGER", Quantity: 1, Amount: 12.50, UnitPrice: 12.50}, result.Items[0])
	assert.Equal(t, ParsedItem{Description: "FRIES", Quantity: 2, Amount: 8.00, UnitPrice: 4.00}, result.Items[1])
	assert.Equal(t, "2x COLA", result.Items[2].Description)
	assert.Equal(t, 5.00, result.Items[2].Amount)

	require.NotNil(t, result.Subtotal)
	assert.Equal(t, 25.50, *result.Subtotal)
	require.NotNil(t, result.Tax)
	assert.Equal(t, 2.17, *result.Tax)
	require.NotNil(t, result.Tip)
	assert.Equal(t, 4.00, *result.Tip)
	require.NotNil(t, result.Total)
	assert.Equal(t, 31.67, *result.Total)
}

func TestParseReceiptTextEmptyInput(t *testing.T) {
	result := ParseReceiptText("")
	assert.Nil(t, result.Merchant)
	assert.Empty(t, result.Items)
	assert.Nil(t, result.Subtotal)
}

func TestParseReceiptTextSkipsSeparatorsAndFooters(t *testing.T) {
	result := ParseReceiptText("====\nCHANGE 5.00\n12.95\nTHANK YOU\n")
	assert.Empty(t, result.Items)
}

func TestParseReceiptTextThousandsSeparator(t *testing.T) {
	result := ParseReceiptText("BANQUET PACKAGE 1,250.00\n")
	require.Len(t, result.Items, 1)
	assert.Equal(t, 1250.00, result.Items[0].Amount)
}
