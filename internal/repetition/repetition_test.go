package repetition

import "testing"

func TestExpandRepeatsConsecutively(t *testing.T) {
	dst := make([]bool, 9)
	Expand([]bool{true, false, true}, 3, dst)

	want := []bool{true, true, true, false, false, false, true, true, true}
	for i := range want {
		if dst[i] != want[i] {
			t.Errorf("bit %d: got %v, want %v", i, dst[i], want[i])
		}
	}
}

func TestFoldMajorityOfThree(t *testing.T) {
	cases := []struct {
		in   []bool
		want bool
	}{
		{[]bool{true, true, true}, true},
		{[]bool{true, true, false}, true},
		{[]bool{true, false, true}, true},
		{[]bool{false, true, true}, true},
		{[]bool{true, false, false}, false},
		{[]bool{false, false, false}, false},
	}
	for _, tc := range cases {
		got := Fold(tc.in, 3)
		if len(got) != 1 || got[0] != tc.want {
			t.Errorf("Fold(%v, 3) = %v, want [%v]", tc.in, got, tc.want)
		}
	}
}

func TestFoldFactorTwoRequiresUnanimity(t *testing.T) {
	// With two copies a strict majority needs both, so one flipped copy
	// already decodes to 0. This gives zero tolerance at factor 2 and is the
	// wire behavior decoders depend on.
	cases := []struct {
		in   []bool
		want bool
	}{
		{[]bool{true, true}, true},
		{[]bool{true, false}, false},
		{[]bool{false, true}, false},
		{[]bool{false, false}, false},
	}
	for _, tc := range cases {
		got := Fold(tc.in, 2)
		if got[0] != tc.want {
			t.Errorf("Fold(%v, 2) = %v, want %v", tc.in, got[0], tc.want)
		}
	}
}

func TestFoldFactorOnePassesThrough(t *testing.T) {
	in := []bool{true, false, true, true}
	got := Fold(in, 1)
	for i := range in {
		if got[i] != in[i] {
			t.Errorf("bit %d: got %v, want %v", i, got[i], in[i])
		}
	}
}

func TestExpandFoldRoundTrip(t *testing.T) {
	src := []bool{true, false, false, true, true, false, true}
	for _, factor := range []int{1, 2, 3, 5} {
		dst := make([]bool, len(src)*factor)
		Expand(src, factor, dst)
		got := Fold(dst, factor)
		for i := range src {
			if got[i] != src[i] {
				t.Errorf("factor %d bit %d: got %v, want %v", factor, i, got[i], src[i])
			}
		}
	}
}

func TestFoldIgnoresTrailingPartialGroup(t *testing.T) {
	got := Fold([]bool{true, true, true, true}, 3)
	if len(got) != 1 {
		t.Errorf("got %d groups, want 1", len(got))
	}
}
