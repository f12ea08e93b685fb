package cycle

// Category is the single display category of a calendar day.
type Category int

const (
	CategoryPlain Category = iota
	CategoryPeriod
	CategoryPredictedPeriod
	CategoryOvulation
	CategoryFertile
	CategoryLuteal
)

func (c Category) String() string {
	switch c {
	case CategoryPeriod:
		return "period-day"
	case CategoryPredictedPeriod:
		return "predicted-period"
	case CategoryOvulation:
		return "ovulation-day"
	case CategoryFertile:
		return "fertile-day"
	case CategoryLuteal:
		return "luteal-phase"
	default:
		return "plain"
	}
}

// Classification is the result of classifying one day.
// Today is an overlay and combines with any category.
type Classification struct {
	Category  Category
	Intensity FlowIntensity // Set only for CategoryPeriod.
	Today     bool
}

// Classify derives the display category of a day from its annotation, which may be nil.
// The annotation flags can overlap, so the order of the checks below is the precedence.
func Classify(a *DayAnnotation, isToday bool) Classification {
	c := Classification{Category: CategoryPlain, Today: isToday}
	if a == nil {
		return c
	}

	switch {
	case a.IsPeriod:
		c.Category = CategoryPeriod
		c.Intensity = a.FlowIntensity.OrDefault()
	case a.IsPredictedPeriod:
		c.Category = CategoryPredictedPeriod
	case a.IsOvulation:
		c.Category = CategoryOvulation
	case a.IsFertile:
		c.Category = CategoryFertile
	case a.Phase == PhaseLuteal:
		c.Category = CategoryLuteal
	}
	return c
}
