package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bigCSV = `Listing export,,
Owner,Phone Number,Unit
A,0123456789,1
B,0198765432,2
C,0123456789,3
D,,4
E,0171111111,5
F,0172222222,6
G,0173333333,7
`

func TestPreview_DefaultLimit(t *testing.T) {
	dir := workdir(t)
	path := writeFile(t, dir, "owners.csv", bigCSV)

	out, _, err := execute(NewPreviewCommand(&RootOptions{Format: "text"}), path)
	require.NoError(t, err)

	assert.Contains(t, out, `Phone column: "Phone Number" (row 2, column 2)`)
	assert.Contains(t, out, "Numbers: 6 (5 unique)")
	assert.Contains(t, out, "+60123456789")
	assert.Contains(t, out, "+60171111111")
	assert.NotContains(t, out, "+60172222222")
	assert.Contains(t, out, "... and 1 more (use --all to list every number)")
}

func TestPreview_All(t *testing.T) {
	dir := workdir(t)
	path := writeFile(t, dir, "owners.csv", bigCSV)

	out, _, err := execute(NewPreviewCommand(&RootOptions{Format: "text"}), path, "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "+60173333333")
	assert.NotContains(t, out, "more (use --all")
}

func TestPreview_JSON(t *testing.T) {
	dir := workdir(t)
	path := writeFile(t, dir, "owners.csv", bigCSV)

	out, _, err := execute(NewPreviewCommand(&RootOptions{Format: "json"}), path, "--limit", "2")
	require.NoError(t, err)

	var resp struct {
		Status string        `json:"status"`
		Data   PreviewResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "Phone Number", resp.Data.Column)
	assert.Equal(t, 2, resp.Data.HeaderRow)
	assert.Equal(t, 2, resp.Data.Index)
	assert.Equal(t, 6, resp.Data.Total)
	assert.Equal(t, 5, resp.Data.Unique)
	require.Len(t, resp.Data.Numbers, 2)
	assert.Equal(t, "+60123456789", string(resp.Data.Numbers[0].Number))
	assert.True(t, resp.Data.Numbers[0].Valid)
	assert.Equal(t, "MY", resp.Data.Numbers[0].Region)
}

func TestPreview_NoPhoneColumn(t *testing.T) {
	dir := workdir(t)
	path := writeFile(t, dir, "owners.csv", "Name,Email\n")

	out, _, err := execute(NewPreviewCommand(&RootOptions{Format: "text"}), path)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error [E004]")
}
