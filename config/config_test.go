package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault_Valid verifies the built-in configuration validates
func TestDefault_Valid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

// TestValidate_CollectsAllErrors verifies every bad field is reported
func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Default()
	cfg.DataDir = " "
	cfg.HTTP.Delay = -1
	cfg.Ranking.Limit = 0
	cfg.Ranking.Source = "carrier-pigeon"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalid))

	var ve ValidationError
	require.True(t, errors.As(err, &ve))

	fields := make([]string, 0, len(ve.Items))
	for _, item := range ve.Items {
		fields = append(fields, item.Field)
	}
	assert.ElementsMatch(t, []string{"data_dir", "http.delay", "ranking.limit", "ranking.source"}, fields)
}

// TestValidate_FeedRequiresURL verifies the feed source needs a feed URL
func TestValidate_FeedRequiresURL(t *testing.T) {
	cfg := Default()
	cfg.Ranking.Source = SourceFeed

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ranking.feed_url")

	cfg.Ranking.FeedURL = "https://example.com/rss"
	assert.NoError(t, cfg.Validate())
}

// TestStatusPath verifies the ledger lives in the data directory
func TestStatusPath(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "var"

	assert.Equal(t, filepath.Join("var", "article-status.json"), cfg.StatusPath())
}
