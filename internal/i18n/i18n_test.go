package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalize(t *testing.T) {
	tr, err := New()
	require.NoError(t, err)

	data := map[string]any{"Entity": "order", "ID": "1001"}
	assert.Equal(t, "order 1001 not found", tr.Localize("NotFound", data, "fallback"))
	assert.Equal(t, "order 1001 tidak ditemukan", tr.Localize("NotFound", data, "fallback", "id"))
	assert.Equal(t, "order 1001 not found", tr.Localize("NotFound", data, "fallback", "fr-FR"))
	assert.Equal(t, "fallback", tr.Localize("NoSuchMessage", nil, "fallback"))
}
