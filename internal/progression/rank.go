package progression

import (
	"fmt"
	"math"
)

// Ranks in ascending order. Levels [1, MaxLevel] are partitioned into
// equal-width bands; the last rank absorbs the final partial band.
var Ranks = []string{"E-RANK", "D-RANK", "C-RANK", "B-RANK", "A-RANK", "S-RANK"}

// levelsPerRank is the integer band width.
var levelsPerRank = MaxLevel / len(Ranks)

// RankForLevel returns the rank label for a level. Levels outside
// [1, MaxLevel] are clamped.
func RankForLevel(level int) string {
	if level < 1 {
		level = 1
	}
	idx := (level - 1) / levelsPerRank
	if idx >= len(Ranks) {
		idx = len(Ranks) - 1
	}
	return Ranks[idx]
}

// RGB is a display color.
type RGB struct {
	R, G, B int
}

// Hex returns the color as a #rrggbb string for terminal styling.
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// rankColors are the reference colors interpolated across the level range:
// teal at the bottom, crimson at the midpoint, slate blue at the cap.
var rankColors = []RGB{
	{0, 139, 139},
	{220, 20, 60},
	{72, 61, 139},
}

// RankColorForLevel linearly interpolates R/G/B within the active segment.
// The level range splits into len(rankColors)-1 equal segments.
func RankColorForLevel(level int) RGB {
	if level < 1 {
		level = 1
	}
	if level > MaxLevel {
		level = MaxLevel
	}

	stages := len(rankColors) - 1
	segment := float64(MaxLevel) / float64(stages)

	stage := int(float64(level-1) / segment)
	if stage > stages-1 {
		stage = stages - 1
	}

	t := math.Mod(float64(level-1), segment) / segment
	start := rankColors[stage]
	end := rankColors[stage+1]

	lerp := func(a, b int) int {
		return int(math.Floor(float64(a) + float64(b-a)*t))
	}
	return RGB{
		R: lerp(start.R, end.R),
		G: lerp(start.G, end.G),
		B: lerp(start.B, end.B),
	}
}
