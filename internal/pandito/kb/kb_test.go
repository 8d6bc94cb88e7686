package kb_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pandito-bot/pandito/internal/pandito/kb"
)

const sampleJSON = `{
  "parque general san martin": {
    "nombre": "Parque General San Martín",
    "descripcion": "El pulmón verde de la ciudad de Mendoza.",
    "como_llegar": "https://maps.google.com/?q=parque+general+san+martin",
    "horarios": "Todos los días de 8 a 20",
    "actividades": ["caminatas", "ciclismo", "picnic"]
  },
  "catena zapata": {
    "nombre": "Catena Zapata",
    "descripcion": "Bodega ícono de Agrelo con forma de pirámide maya."
  }
}`

func TestParse_PreservesFileOrder(t *testing.T) {
	k, err := kb.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"parque general san martin", "catena zapata"}
	got := k.Keys()
	if len(got) != len(want) {
		t.Fatalf("expected %d keys, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("key[%d]: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestParse_NormalizesKeys(t *testing.T) {
	k, err := kb.Parse([]byte(`{"  Cerro Arco  ": {"nombre": "Cerro Arco"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, ok := k.Get("cerro arco")
	if !ok {
		t.Fatal("expected normalized key lookup to succeed")
	}
	if rec.Key != "cerro arco" {
		t.Errorf("expected stored key %q, got %q", "cerro arco", rec.Key)
	}
}

func TestParse_OptionalFields(t *testing.T) {
	k, err := kb.Parse([]byte(sampleJSON))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec, _ := k.Get("catena zapata")
	if rec.HowToGet != "" || rec.Hours != "" || len(rec.Activities) != 0 {
		t.Errorf("expected optional fields to stay empty, got %+v", rec)
	}
}

func TestParse_RejectsInvalidSchema(t *testing.T) {
	cases := []struct {
		name string
		data string
	}{
		{"missing nombre", `{"x": {"descripcion": "sin nombre"}}`},
		{"wrong activities type", `{"x": {"nombre": "X", "actividades": "no es lista"}}`},
		{"unknown field", `{"x": {"nombre": "X", "precio": "gratis"}}`},
		{"top-level array", `[{"nombre": "X"}]`},
		{"not json", `nope`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := kb.Parse([]byte(tc.data)); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}

func TestLoad_MissingFileYieldsEmptyKB(t *testing.T) {
	k, err := kb.Load(filepath.Join(t.TempDir(), "no-such-file.json"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Len() != 0 {
		t.Errorf("expected empty knowledge base, got %d entries", k.Len())
	}
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lugares.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	k, err := kb.Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", k.Len())
	}
	rec, ok := k.Get("parque general san martin")
	if !ok {
		t.Fatal("expected lookup to succeed")
	}
	if rec.Name != "Parque General San Martín" {
		t.Errorf("unexpected name %q", rec.Name)
	}
}
