package report

import (
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateWritesPDF(t *testing.T) {
	g := NewGenerator(t.TempDir())

	path, err := g.Generate(AlertReport{
		MonitorID:      uuid.New(),
		URL:            "https://api.example.com/health",
		CheckedAt:      time.Now(),
		Status:         "DOWN",
		PrevStatus:     "UP",
		HTTPCode:       500,
		ResponseTimeMs: 231,
		Reason:         "Status changed from UP to DOWN",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, len(data) > 4 && string(data[:4]) == "%PDF", "output must be a PDF")
}

func TestGenerateFirstTransitionHasNoPrevStatus(t *testing.T) {
	g := NewGenerator(t.TempDir())

	path, err := g.Generate(AlertReport{
		MonitorID: uuid.New(),
		URL:       "https://api.example.com/health",
		CheckedAt: time.Now(),
		Status:    "DOWN",
		HTTPCode:  0,
		Reason:    "Status changed from UP to DOWN",
	})
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestGenerateFailsOnMissingDir(t *testing.T) {
	g := NewGenerator("/definitely/not/a/real/dir")

	_, err := g.Generate(AlertReport{MonitorID: uuid.New()})
	assert.Error(t, err)
}
