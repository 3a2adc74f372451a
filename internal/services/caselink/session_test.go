package caselink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGridRows(t *testing.T) {
	html := `<html><body>
	<table id="GRIDTBL_1A">
	<tbody>
	<tr>
		<td><input value="1"></td>
		<td><input value="3/1/2022"></td>
		<td><input value="DETAINER WARRANT FILED"></td>
	</tr>
	<tr>
		<td><input value="2"></td>
		<td><input value="3/10/2022"></td>
		<td><input value="COURT DATE CONTINUANCE 3.15.22"></td>
	</tr>
	<tr>
		<td><input value=""></td>
		<td><input value=""></td>
		<td><input value=""></td>
	</tr>
	</tbody>
	</table>
	</body></html>`

	rows, err := parseGridRows(html)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "3/1/2022", rows[0].Date)
	assert.Equal(t, "DETAINER WARRANT FILED", rows[0].Description)
	assert.Equal(t, "3/10/2022", rows[1].Date)
	assert.Equal(t, "COURT DATE CONTINUANCE 3.15.22", rows[1].Description)
}

func TestParseGridRows_NoGrid(t *testing.T) {
	rows, err := parseGridRows("<html><body><p>no grid here</p></body></html>")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
