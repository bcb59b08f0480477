package outline

// LevelMap assigns H1..H3 to the largest font-size buckets above body text.
type LevelMap struct {
	profile *FontProfile
	levels  map[int]Level // bucket index -> level
}

// BuildLevelMap picks up to three buckets strictly above the body bucket,
// skipping every bucket that holds a title span, largest first. Pass no
// titleSizes when the document has no title. Fewer candidates give a partial
// map; a single-size document gives an empty one.
func BuildLevelMap(p *FontProfile, titleSizes ...float64) LevelMap {
	m := LevelMap{profile: p, levels: make(map[int]Level)}
	if p == nil || p.Body < 0 {
		return m
	}
	titleBuckets := make(map[int]bool, len(titleSizes))
	for _, size := range titleSizes {
		titleBuckets[p.BucketOf(size)] = true
	}
	rank := 0
	for i := len(p.Buckets) - 1; i > p.Body && rank < len(levelByRank); i-- {
		if titleBuckets[i] {
			continue
		}
		m.levels[i] = levelByRank[rank]
		rank++
	}
	return m
}

// LevelFor returns the level mapped to size, if any.
func (m LevelMap) LevelFor(size float64) (Level, bool) {
	if len(m.levels) == 0 {
		return "", false
	}
	lvl, ok := m.levels[m.profile.BucketOf(size)]
	return lvl, ok
}

// Len is the number of mapped levels.
func (m LevelMap) Len() int {
	return len(m.levels)
}

// Sizes returns the representative size of each mapped level, H1 first.
func (m LevelMap) Sizes() []float64 {
	out := make([]float64, len(m.levels))
	for i, lvl := range m.levels {
		for r, l := range levelByRank {
			if l == lvl {
				out[r] = m.profile.Buckets[i].Size()
			}
		}
	}
	return out
}
