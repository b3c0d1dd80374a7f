package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/text/encoding/charmap"
)

func misDecode(t *testing.T, cm *charmap.Charmap, s string) string {
	t.Helper()
	out, err := cm.NewDecoder().String(s)
	require.NoError(t, err)
	return out
}

func TestRepairIdentityOnCleanASCII(t *testing.T) {
	for _, s := range []string{
		"hello world",
		"The quick brown fox, 42 times!",
		"path/to/file.txt?q=1&r=2",
	} {
		assert.Equal(t, s, RepairText(s), s)
	}
}

func TestRepairTrimsAndEmpties(t *testing.T) {
	assert.Equal(t, "", RepairText(""))
	assert.Equal(t, "", RepairText(" \t\n "))
	assert.Equal(t, "hello", RepairText("  hello \n"))
	assert.Equal(t, "笔记", RepairText("笔记\n"))
}

func TestRepairKeepsCleanCJK(t *testing.T) {
	assert.Equal(t, "笔记", RepairText("笔记"))
	assert.Equal(t, "我喜欢看书", RepairText("我喜欢看书"))
}

func TestRepairRestoresCP1252Mojibake(t *testing.T) {
	broken := misDecode(t, charmap.Windows1252, "笔记")
	require.Equal(t, "ç¬”è®°", broken)

	assert.Equal(t, "笔记", RepairText(broken))
}

func TestRepairRestoresLatin1Mojibake(t *testing.T) {
	r, err := NewRepairer(DefaultRepairOptions(), zaptest.NewLogger(t))
	require.NoError(t, err)

	for _, original := range []string{"笔记", "我喜欢看书", "今天天气很好"} {
		broken := misDecode(t, charmap.ISO8859_1, original)
		repaired := r.Repair(broken)

		assert.Equal(t, original, repaired)
		assert.Greater(t, r.Score(repaired), r.Score(broken))
	}
}

func TestScore(t *testing.T) {
	r, err := NewRepairer(DefaultRepairOptions(), nil)
	require.NoError(t, err)

	assert.Equal(t, 10, r.Score("笔记"))
	assert.Equal(t, -6, r.Score("ç¬”è®°"))
	assert.Equal(t, 0, r.Score("plain"))
}

func TestRepairTieKeepsOriginal(t *testing.T) {
	r, err := NewRepairer(RepairOptions{Markers: DefaultMarkers}, nil)
	require.NoError(t, err)

	broken := "ç¬”è®°"
	assert.Equal(t, broken, r.Repair(broken))
}

func TestRepairLatinTextWithMarkersUntouched(t *testing.T) {
	// é alone is not a valid UTF-8 lead sequence once re-encoded
	assert.Equal(t, "café", RepairText("café"))
}

func TestRepairCustomWeights(t *testing.T) {
	r, err := NewRepairer(RepairOptions{
		CJKWeight:    1,
		MarkerWeight: 10,
		Markers:      "ç",
		Encodings:    []string{"windows-1252"},
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, "笔记", r.Repair("ç¬”è®°"))
}

func TestNewRepairerRejectsUnknownEncoding(t *testing.T) {
	_, err := NewRepairer(RepairOptions{Encodings: []string{"ebcdic"}}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ebcdic")
}

func TestReencodeDropsUnrepresentable(t *testing.T) {
	r, err := NewRepairer(DefaultRepairOptions(), nil)
	require.NoError(t, err)

	c := r.reencode("笔记", r.encodings[0])
	assert.False(t, c.ok)
	assert.Equal(t, "latin1", c.source)

	c = r.reencode("plain", r.encodings[1])
	assert.True(t, c.ok)
	assert.Equal(t, "plain", c.text)
}
