package pricing

// DemandInput carries everything the demand classifier looks at
type DemandInput struct {
	Count    int
	Brand    string
	AgeYears int
}

// demandBaseScore maps the comparable count onto the level ladder
func demandBaseScore(count int, params Params) int {
	switch {
	case count > params.DemandHighAbove:
		return 2
	case count >= params.DemandModerateAt:
		return 1
	default:
		return 0
	}
}

// ageModifier rewards nearly-new vehicles and penalises old ones
func ageModifier(ageYears int, params Params) int {
	switch {
	case ageYears <= params.NewVehicleMaxAge:
		return 1
	case ageYears >= params.OldVehicleMinAge:
		return -1
	default:
		return 0
	}
}

// DemandScore returns the modified score before it is mapped to a level
func DemandScore(in DemandInput, params Params) int {
	score := demandBaseScore(in.Count, params)
	if params.IsPopularBrand(in.Brand) {
		score++
	}
	return score + ageModifier(max(in.AgeYears, 0), params)
}

// ClassifyDemand resolves the demand level for a comparable count, brand and
// vehicle age. Every input maps to exactly one level.
func ClassifyDemand(in DemandInput, params Params) Level {
	return levelFromScore(DemandScore(in, params))
}
