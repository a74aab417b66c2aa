package progression

import "testing"

func TestRankForLevel(t *testing.T) {
	tests := []struct {
		level int
		want  string
	}{
		{1, "E-RANK"},
		{19, "E-RANK"},
		{20, "D-RANK"},
		{38, "D-RANK"},
		{39, "C-RANK"},
		{58, "B-RANK"},
		{77, "A-RANK"},
		{96, "S-RANK"},
		{114, "S-RANK"},
	}

	for _, tt := range tests {
		got := RankForLevel(tt.level)
		if got != tt.want {
			t.Errorf("RankForLevel(%d) = %q, want %q", tt.level, got, tt.want)
		}
	}
}

// Rank index never decreases as level climbs from 1 to the cap, and every
// level in range is defined.
func TestRankForLevel_Monotone(t *testing.T) {
	index := func(rank string) int {
		for i, r := range Ranks {
			if r == rank {
				return i
			}
		}
		return -1
	}

	prev := 0
	for level := 1; level <= MaxLevel; level++ {
		idx := index(RankForLevel(level))
		if idx < 0 {
			t.Fatalf("RankForLevel(%d) returned unknown rank", level)
		}
		if idx < prev {
			t.Fatalf("rank moved backwards at level %d", level)
		}
		prev = idx
	}
}

func TestRankForLevel_ClampsBelowRange(t *testing.T) {
	if got := RankForLevel(0); got != "E-RANK" {
		t.Errorf("RankForLevel(0) = %q, want E-RANK", got)
	}
}

func TestRankColorForLevel_Endpoints(t *testing.T) {
	if got := RankColorForLevel(1); got != (RGB{0, 139, 139}) {
		t.Errorf("level 1 color = %+v, want teal reference", got)
	}

	// The cap sits just short of the final reference color; every channel
	// must be inside the last segment's range.
	got := RankColorForLevel(MaxLevel)
	if got.R < 72 || got.R > 220 {
		t.Errorf("cap color R = %d, outside final segment", got.R)
	}
}

func TestRankColorForLevel_InRange(t *testing.T) {
	for level := 1; level <= MaxLevel; level++ {
		c := RankColorForLevel(level)
		for _, ch := range []int{c.R, c.G, c.B} {
			if ch < 0 || ch > 255 {
				t.Fatalf("level %d produced out-of-range channel: %+v", level, c)
			}
		}
	}
}

func TestRGB_Hex(t *testing.T) {
	c := RGB{0, 139, 139}
	if got := c.Hex(); got != "#008b8b" {
		t.Errorf("Hex() = %q, want #008b8b", got)
	}
}
