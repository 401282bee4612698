package ions

// Source is a volume of water with a known profile.
type Source struct {
	Profile Profile
	Volume  float64
}

// Blend mixes two waters by volume-weighted average. When the combined
// volume is zero the zero profile is returned; a zero volume on one side
// returns the other side unchanged.
func Blend(a Profile, volumeA float64, b Profile, volumeB float64) Profile {
	total := volumeA + volumeB
	if total == 0 {
		return Profile{}
	}
	if volumeB == 0 {
		return a
	}
	if volumeA == 0 {
		return b
	}

	var out Profile
	for _, ion := range All {
		out = out.With(ion, (a.Get(ion)*volumeA+b.Get(ion)*volumeB)/total)
	}
	return out
}

// BlendAll folds sources left to right, carrying the accumulated volume, and
// returns the mixed profile together with its total volume.
func BlendAll(sources ...Source) (Profile, float64) {
	var acc Profile
	var volume float64
	for _, src := range sources {
		acc = Blend(acc, volume, src.Profile, src.Volume)
		volume += src.Volume
	}
	return acc, volume
}
