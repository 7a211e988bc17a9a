//    turftopic
//    Copyright: MHA535 2026
//    License: GNU GENERAL PUBLIC LICENSE 3
//        (see LICENSE in the top level directory of the distribution)

package mm

import (
	"bytes"
	"strings"
	"testing"
)

func TestEmit_RespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	m := NewMessageMaker()
	m.Out = &buf
	m.BW = true
	m.LLvl = MSGNOTE

	m.WARN("shown")
	m.TMI("hidden")

	got := buf.String()
	if got != "[TT] shown\n" {
		t.Fatalf("unexpected output %q", got)
	}
}

func TestColor_BlackAndWhiteStripsTags(t *testing.T) {
	m := NewMessageMaker()
	m.BW = true
	if got := m.ColStyle("S1C4bold greenC0S0"); got != "bold green" {
		t.Errorf("got %q", got)
	}
}

func TestColor_AddsEscapes(t *testing.T) {
	m := NewMessageMaker()
	m.BW = false
	m.Win = false
	got := m.Color("C4x C0")
	if !strings.Contains(got, GREEN) || !strings.Contains(got, RESET) {
		t.Errorf("expected ANSI codes in %q", got)
	}
}

func TestCaller_DoesNotAlterOriginal(t *testing.T) {
	m := NewMessageMaker()
	c := m.Caller("RtTopics()")
	if m.Clr != "" || c.Clr != "RtTopics()" {
		t.Errorf("caller copy leaked: %q / %q", m.Clr, c.Clr)
	}
}
