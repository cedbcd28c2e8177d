package vault

// The metadata header is XOR-scrambled with this fixed repeating key so it
// does not sit in the frames as readable JSON. This is obfuscation, not
// encryption: Scramble is its own inverse and the key is public.
var obfuscationKey = []byte{
	0xC3, 0x5A, 0x97, 0x2E, 0x61, 0xB8, 0x0D, 0xF4,
	0x39, 0x86, 0xD2, 0x4B, 0x7C, 0xE5, 0x10, 0xAF,
}

// Scramble XORs b against the repeating key, returning a new slice. Applying
// it twice returns the original bytes.
func Scramble(b []byte) []byte {
	out := make([]byte, len(b))
	for i := range b {
		out[i] = b[i] ^ obfuscationKey[i%len(obfuscationKey)]
	}
	return out
}
