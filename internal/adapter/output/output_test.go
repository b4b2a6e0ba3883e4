package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/toasty/internal/adapter/input"
	"github.com/jmylchreest/toasty/internal/toast"
)

func testSnapshot() Snapshot {
	return NewSnapshot(30, 500*time.Millisecond, []toast.Frame{
		{
			ID:        "01AAA",
			Screen:    "0",
			Corner:    toast.TopRight,
			Index:     0,
			Title:     "Build finished",
			Text:      "all\ntargets   ok",
			Kind:      toast.KindInformation,
			X:         1600,
			Y:         20,
			Width:     300,
			Height:    87,
			Progress:  150,
			Countdown: true,
			State:     toast.StateVisible,
		},
		{
			ID:     "01BBB",
			Screen: "0",
			Corner: toast.TopRight,
			Index:  1,
			Title:  "Sticky",
			X:      1600,
			Y:      117,
			Width:  300,
			Height: 87,
			State:  toast.StateVisible,
		},
	})
}

func TestParseFormat(t *testing.T) {
	for _, f := range ValidFormats() {
		got, err := ParseFormat(string(f))
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	f, err := NewFormatter(FormatJSON, FormatterOptions{})
	require.NoError(t, err)
	assert.IsType(t, &JSONFormatter{}, f)

	f, err = NewFormatter("", DefaultFormatterOptions())
	require.NoError(t, err)
	assert.IsType(t, &PlainFormatter{}, f)

	_, err = NewFormatter(FormatPlain, FormatterOptions{Template: "{{.Title"})
	assert.Error(t, err)

	_, err = NewFormatter("csv", FormatterOptions{})
	assert.Error(t, err)
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatterOptions{}).Format(&buf, testSnapshot()))

	assert.Equal(t, 1, strings.Count(buf.String(), "\n"), "one line per snapshot")

	var decoded struct {
		Tick      int              `json:"tick"`
		ElapsedMS int64            `json:"elapsed_ms"`
		Popups    []map[string]any `json:"popups"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 30, decoded.Tick)
	assert.Equal(t, int64(500), decoded.ElapsedMS)
	require.Len(t, decoded.Popups, 2)
	assert.Equal(t, "top-right", decoded.Popups[0]["corner"])
	assert.Equal(t, "information", decoded.Popups[0]["kind"])
	assert.Equal(t, "visible", decoded.Popups[0]["state"])
}

func TestJSONFormatter_EmptySnapshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter(FormatterOptions{Indent: true}).Format(&buf, NewSnapshot(0, 0, nil)))
	assert.Contains(t, buf.String(), `"popups": []`)
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	f := NewYAMLFormatter()
	require.NoError(t, f.Format(&buf, testSnapshot()))
	require.NoError(t, f.Format(&buf, NewSnapshot(31, 516*time.Millisecond, nil)))

	dec := yaml.NewDecoder(&buf)
	var first, second map[string]any
	require.NoError(t, dec.Decode(&first))
	require.NoError(t, dec.Decode(&second))

	assert.Equal(t, 30, first["tick"])
	popups, ok := first["popups"].([]any)
	require.True(t, ok)
	require.Len(t, popups, 2)
	assert.Equal(t, "top-right", popups[0].(map[string]any)["corner"])
	assert.Equal(t, 31, second["tick"])
}

func TestPlainFormatter_Format(t *testing.T) {
	f, err := NewPlainFormatter(DefaultFormatterOptions())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testSnapshot()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "[30 @ 500ms] 2 popups", lines[0])
	assert.Equal(t, `  0/top-right#0 (1600,20) 300x87 visible [#####.....] "Build finished": all targets ok`, lines[1])
	assert.Equal(t, `  0/top-right#1 (1600,117) 300x87 visible "Sticky"`, lines[2])
}

func TestPlainFormatter_Template(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{Template: `{{.ID}} {{truncate .Title 5}} {{bar . 4}}`})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, testSnapshot()))
	assert.Contains(t, buf.String(), "  01AAA Build... ##..\n")
	assert.Contains(t, buf.String(), "  01BBB Stick... ....\n")
}

func TestPlainFormatter_FormatEvent(t *testing.T) {
	f, err := NewPlainFormatter(FormatterOptions{})
	require.NoError(t, err)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	f.now = func() time.Time { return now }

	var buf bytes.Buffer
	ev := input.Event{Type: input.EventClosed, ID: "01AAA", Title: "Hi", Time: now.Add(-3 * time.Second)}
	require.NoError(t, f.FormatEvent(&buf, ev))
	assert.Equal(t, "closed 01AAA \"Hi\" (3 seconds ago)\n", buf.String())
}

func TestIDsFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewIDsFormatter()
	require.NoError(t, f.Format(&buf, testSnapshot()))
	require.NoError(t, f.FormatEvent(&buf, input.Event{ID: "01CCC"}))
	assert.Equal(t, "01AAA\n01BBB\n01CCC\n", buf.String())
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "..........", progressBar(0, 300, 10))
	assert.Equal(t, "##########", progressBar(300, 300, 10))
	assert.Equal(t, "##########", progressBar(400, 300, 10))
	assert.Equal(t, "....", progressBar(5, 0, 4))
}
