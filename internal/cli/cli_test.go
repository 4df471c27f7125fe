package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	assert.Contains(t, FormatSuccess("saved"), "saved")
	assert.Contains(t, FormatSuccess("saved"), SuccessIcon)
	assert.Contains(t, FormatError("boom"), ErrorIcon)
	assert.Contains(t, FormatTitle("SpendScore"), "SpendScore")
	assert.Contains(t, RenderBox("Title", "body"), "body")
}

func TestNewInterruptHandler_Defaults(t *testing.T) {
	h := NewInterruptHandler(nil, "")
	assert.NotNil(t, h.writer)
	assert.Equal(t, "Interrupted", h.message)
	assert.False(t, h.WasInterrupted())
}

func TestInterruptHandler_TriggerOnce(t *testing.T) {
	var buf bytes.Buffer
	h := NewInterruptHandler(&buf, "Import interrupted")

	h.trigger()
	h.trigger()

	assert.True(t, h.WasInterrupted())
	assert.Equal(t, 1, strings.Count(buf.String(), "Import interrupted"))
}

func TestHandleInterrupts_StopCancels(t *testing.T) {
	h := NewInterruptHandler(&bytes.Buffer{}, "x")
	ctx, stop := h.HandleInterrupts(context.Background())
	stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not canceled by stop")
	}
	assert.False(t, h.WasInterrupted())
}

func TestProgress(t *testing.T) {
	var p *Progress
	assert.NotPanics(t, func() {
		p.Step()
		p.Finish()
	})

	assert.Nil(t, NewProgress(&bytes.Buffer{}, 1, "Parsing", false))
	assert.Nil(t, NewProgress(&bytes.Buffer{}, 5, "Parsing", true))

	var buf bytes.Buffer
	p = NewProgress(&buf, 3, "Parsing files", false)
	assert.NotNil(t, p)
	p.Step()
	p.Step()
	p.Step()
	p.Finish()
}
