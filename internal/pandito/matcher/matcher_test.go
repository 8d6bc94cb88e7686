package matcher_test

import (
	"testing"

	"github.com/pandito-bot/pandito/internal/pandito/kb"
	"github.com/pandito-bot/pandito/internal/pandito/matcher"
)

func mustKB(t *testing.T, data string) *kb.KnowledgeBase {
	t.Helper()
	k, err := kb.Parse([]byte(data))
	if err != nil {
		t.Fatalf("parse knowledge base: %v", err)
	}
	return k
}

const placesJSON = `{
  "parque general san martin": {"nombre": "Parque General San Martín", "descripcion": "El pulmón verde de Mendoza."},
  "catena zapata": {"nombre": "Catena Zapata", "descripcion": "Bodega en Agrelo."},
  "puente del inca": {"nombre": "Puente del Inca", "descripcion": "Formación natural en alta montaña."}
}`

func TestMatch_SubstringByKey(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	rec := m.Match("quiero visitar el puente del inca este finde")
	if rec == nil || rec.Key != "puente del inca" {
		t.Fatalf("expected puente del inca, got %v", rec)
	}
}

func TestMatch_SubstringByName(t *testing.T) {
	// Display names match case-insensitively even when the key would not.
	k := mustKB(t, `{"cerro": {"nombre": "Cerro Arco"}}`)
	m := matcher.New(k)
	rec := m.Match("como llego al Cerro Arco?")
	if rec == nil || rec.Key != "cerro" {
		t.Fatalf("expected cerro, got %v", rec)
	}
}

func TestMatch_SubstringTieBreaksByFileOrder(t *testing.T) {
	// "parque" is a key and also a prefix of "parque central"; the entry
	// that appears first in the file wins. Pinned on purpose: do not swap
	// this for longest-match-wins without revisiting the lookup contract.
	k := mustKB(t, `{
	  "parque": {"nombre": "Parque"},
	  "parque central": {"nombre": "Parque Central"}
	}`)
	m := matcher.New(k)
	rec := m.Match("info del parque central")
	if rec == nil || rec.Key != "parque" {
		t.Fatalf("expected first-in-file key %q, got %v", "parque", rec)
	}
}

func TestMatch_FuzzyAboveCutoff(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	// Not a substring of any key, but well within ratio 0.6 of exactly one.
	rec := m.Match("parque gral san martin")
	if rec == nil || rec.Key != "parque general san martin" {
		t.Fatalf("expected fuzzy match, got %v", rec)
	}
}

func TestMatch_FuzzyBelowCutoffMisses(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	if rec := m.Match("empanadas mendocinas"); rec != nil {
		t.Fatalf("expected no match, got %q", rec.Key)
	}
}

func TestMatch_TokenSubset(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	// Every token of "catena zapata" appears, split by unrelated words, so
	// neither the substring nor the fuzzy pass can catch it.
	rec := m.Match("zapata es de la familia catena no? contame algo de esa bodega por favor")
	if rec == nil || rec.Key != "catena zapata" {
		t.Fatalf("expected token-subset match, got %v", rec)
	}
}

func TestMatch_SubstringBeatsFuzzy(t *testing.T) {
	k := mustKB(t, `{
	  "uspallata": {"nombre": "Uspallata"},
	  "potrerillos": {"nombre": "Potrerillos"}
	}`)
	m := matcher.New(k)
	// Contains "uspallata" verbatim; similarity to other keys is irrelevant.
	rec := m.Match("trekking en uspallata")
	if rec == nil || rec.Key != "uspallata" {
		t.Fatalf("expected uspallata, got %v", rec)
	}
}

func TestMatch_EmptyInputs(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	if rec := m.Match("   "); rec != nil {
		t.Errorf("expected nil for blank query, got %q", rec.Key)
	}
	empty := matcher.New(kb.Empty())
	if rec := empty.Match("parque general san martin"); rec != nil {
		t.Errorf("expected nil on empty knowledge base, got %q", rec.Key)
	}
}

func TestMatch_IsIdempotent(t *testing.T) {
	m := matcher.New(mustKB(t, placesJSON))
	first := m.Match("parque san martin info")
	second := m.Match("parque san martin info")
	if first != second {
		t.Errorf("expected identical results, got %v and %v", first, second)
	}
}
