package vault

import (
	"bytes"
	"testing"
)

func TestScrambleSelfInverse(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		{0x00},
		[]byte("short"),
		bytes.Repeat([]byte{0xFF}, 300),
		[]byte(`{"name":"report.pdf","size":1048576}`),
	}
	for _, in := range cases {
		out := Scramble(Scramble(in))
		if !bytes.Equal(out, in) {
			t.Errorf("double scramble of %d bytes did not restore input", len(in))
		}
	}
}

func TestScrambleActuallyChangesBytes(t *testing.T) {
	in := []byte(`{"name":"x"}`)
	out := Scramble(in)
	if bytes.Equal(out, in) {
		t.Fatal("scrambled header is identical to plaintext")
	}
	if bytes.Contains(out, []byte("name")) {
		t.Fatal("scrambled header still contains readable field names")
	}
}

func TestScrambleDoesNotMutateInput(t *testing.T) {
	in := []byte("immutable")
	want := append([]byte(nil), in...)
	Scramble(in)
	if !bytes.Equal(in, want) {
		t.Fatal("Scramble mutated its input")
	}
}

func TestScramblePositionDependsOnlyOnKeyOffset(t *testing.T) {
	long := bytes.Repeat([]byte{0xAB}, len(obfuscationKey)*3)
	out := Scramble(long)
	for i := len(obfuscationKey); i < len(out); i++ {
		if out[i] != out[i-len(obfuscationKey)] {
			t.Fatalf("position %d does not repeat with the key period", i)
		}
	}
}
