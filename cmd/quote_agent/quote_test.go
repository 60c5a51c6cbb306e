package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jonathan/quote-pipeline/internal/config"
	"github.com/jonathan/quote-pipeline/internal/observability"
)

func TestProduceQuote(t *testing.T) {
	dir := t.TempDir()
	withDraft := writeFile(t, dir, "bathroom.json", bathroomRequestJSON)
	bare := writeFile(t, dir, "bare.json", bareRequestJSON)
	draftFile := writeFile(t, dir, "draft.txt", modelDraft)
	logger := zap.NewNop()

	t.Run("autofix completes the quote", func(t *testing.T) {
		out, err := produceQuote(context.Background(), quoteInput{RequestPath: withDraft, AutoFix: true, Now: testDate}, config.Config{}, logger)
		require.NoError(t, err)
		assert.False(t, out.Blocking)
		assert.Equal(t, 55181.0, out.Quote.Summary.CustomerPays)
		assert.Empty(t, out.DraftWarnings)
	})

	t.Run("missing item blocks without autofix", func(t *testing.T) {
		out, err := produceQuote(context.Background(), quoteInput{RequestPath: withDraft, Now: testDate}, config.Config{}, logger)
		require.NoError(t, err)
		assert.True(t, out.Blocking)
		assert.Equal(t, []string{"El-installation våtrum"}, out.Validation.MissingItems)
	})

	t.Run("same input same quote", func(t *testing.T) {
		in := quoteInput{RequestPath: withDraft, AutoFix: true, Now: testDate}
		a, err := produceQuote(context.Background(), in, config.Config{}, logger)
		require.NoError(t, err)
		b, err := produceQuote(context.Background(), in, config.Config{}, logger)
		require.NoError(t, err)
		assert.Equal(t, a.Quote, b.Quote)
	})

	t.Run("draft file", func(t *testing.T) {
		out, err := produceQuote(context.Background(), quoteInput{RequestPath: bare, DraftPath: draftFile, AutoFix: true, Now: testDate}, config.Config{}, logger)
		require.NoError(t, err)
		assert.False(t, out.Blocking)
		assert.Len(t, out.Quote.WorkItems, 6)
	})

	t.Run("draft and generate are exclusive", func(t *testing.T) {
		_, err := produceQuote(context.Background(), quoteInput{RequestPath: bare, DraftPath: draftFile, Generate: true}, config.Config{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mutually exclusive")
	})

	t.Run("generate needs an API key", func(t *testing.T) {
		_, err := produceQuote(context.Background(), quoteInput{RequestPath: bare, Generate: true}, config.Config{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	})

	t.Run("invalid request", func(t *testing.T) {
		empty := writeFile(t, dir, "empty.json", `{}`)
		_, err := produceQuote(context.Background(), quoteInput{RequestPath: empty}, config.Config{}, logger)
		assert.Error(t, err)
	})

	t.Run("missing request file", func(t *testing.T) {
		_, err := produceQuote(context.Background(), quoteInput{RequestPath: dir + "/nope.json"}, config.Config{}, logger)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read request file")
	})
}

func TestPrintResult(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bathroom.json", bathroomRequestJSON)
	out, err := produceQuote(context.Background(), quoteInput{RequestPath: path, AutoFix: true, Now: testDate}, config.Config{}, zap.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	printResult(observability.NewPrinter(&buf), out)
	assert.Contains(t, buf.String(), "VALIDATION")
	assert.Contains(t, buf.String(), "ASSUMPTIONS")
}
