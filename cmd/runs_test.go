package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/siteiq/siteiq/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 15, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Query:     "downtown Austin, TX",
			Status:    model.RunStatusComplete,
			CreatedAt: now,
			UpdatedAt: now.Add(45 * time.Second),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Query:     "Portland, OR",
			Status:    model.RunStatusFailed,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-59 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "QUERY")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "downtown Austin, TX")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "Portland, OR")
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "2026-03-10 09:15")
	assert.Contains(t, output, "abc12345")
	assert.NotContains(t, output, "abc12345-6789")
}

func TestFormatRunsList_TruncatesLongQuery(t *testing.T) {
	long := "the corner of a very long street name and another very long street name, Springfield"
	runs := []model.Run{
		{
			ID:     "abc12345-6789-0000-0000-000000000000",
			Query:  long,
			Status: model.RunStatusComplete,
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	assert.NotContains(t, buf.String(), long)
	assert.Contains(t, buf.String(), "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
	assert.Equal(t, "", truncateID(""))
}
