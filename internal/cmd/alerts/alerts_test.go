package alerts_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/catalogsync/internal/cmd/alerts"
)

func TestAlertString(t *testing.T) {
	assert.Equal(t, "✓ done", alerts.New(alerts.LevelSuccess, "done").String())
	assert.Equal(t, "✗ sync failed: boom",
		alerts.New(alerts.LevelError, "sync failed").WithError(errors.New("boom")).String())
	assert.Equal(t, "i planned", alerts.New(alerts.LevelInfo, "planned").String())
	assert.Equal(t, "warning", alerts.LevelWarning.String())
}

func TestWriterTo(t *testing.T) {
	var buf bytes.Buffer
	w := alerts.NewWriterTo(&buf)
	require.NoError(t, w.WriteAlert(alerts.New(alerts.LevelWarning, "1 worksheet skipped")))
	assert.Equal(t, "! 1 worksheet skipped\n", buf.String())
}
