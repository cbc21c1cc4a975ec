package coord

// NutationPrecision controls which nutation series coord uses.
type NutationPrecision int

const (
	// NutationStandard uses the 30 largest luni-solar terms (~1 arcsec precision).
	// Other error sources (light-time ~20 arcsec, GMST formula ~0.3 arcsec/century)
	// dominate the overall accuracy budget for most applications.
	NutationStandard NutationPrecision = iota

	// NutationFull uses the IAU 2000B abridged model: the same 30-term
	// luni-solar series plus the two fixed bias terms (IERS Conventions
	// 2003 Eq. 5.33) that stand in for the full 687-term planetary
	// series. The offsets are sub-milliarcsecond, so the precision stays
	// that of the 30-term series (~1 arcsec).
	NutationFull
)

var nutationPrecision = NutationStandard

// SetNutationPrecision sets the nutation precision for the coord package.
// Default is NutationStandard (30 terms, fast).
// Not safe for concurrent use — call once at program startup.
func SetNutationPrecision(p NutationPrecision) {
	nutationPrecision = p
}

// GetNutationPrecision returns the current nutation precision setting.
func GetNutationPrecision() NutationPrecision {
	return nutationPrecision
}
