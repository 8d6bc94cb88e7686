package ai

import (
	"strings"
	"testing"
)

func TestAnswerPrompt(t *testing.T) {
	p := answerPrompt("¿dónde puedo esquiar?")
	if !strings.Contains(p, "Sos *Pandito*") {
		t.Error("expected persona block in prompt")
	}
	if !strings.Contains(p, "Usuario pregunta: ¿dónde puedo esquiar?") {
		t.Error("expected question embedded in prompt")
	}
}

func TestDescribePrompt(t *testing.T) {
	p := describePrompt("cerro arco")
	if !strings.Contains(p, "El usuario busca información sobre: cerro arco") {
		t.Error("expected topic embedded in prompt")
	}
	if !strings.Contains(p, "NO uses listas") {
		t.Error("expected formatting rules in prompt")
	}
}

func TestNewGemini_NotConfigured(t *testing.T) {
	if _, err := NewGemini(t.Context(), Config{}); err != ErrNotConfigured {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}
