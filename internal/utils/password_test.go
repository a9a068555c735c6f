package utils

import "testing"

func TestHashECheckSenha(t *testing.T) {
	hash, err := HashSenha("segredo123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !CheckSenha(hash, "segredo123") {
		t.Fatalf("expected password to match")
	}
	if CheckSenha(hash, "outra") {
		t.Fatalf("wrong password must not match")
	}
}

func TestGerarSenhaTemporaria(t *testing.T) {
	a, err := GerarSenhaTemporaria()
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	b, _ := GerarSenhaTemporaria()
	if len(a) != 12 || a == b {
		t.Fatalf("unexpected temporary passwords %q %q", a, b)
	}
}
