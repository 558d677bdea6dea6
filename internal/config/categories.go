package config

// Help categories, in display order by weight.
const (
	CategoryInformation = "Information"
	CategoryUtility     = "Utilities"
	CategorySuperuser   = "Superuser"
)

var CategoryWeights = map[string]int{
	CategoryInformation: 0,
	CategoryUtility:     10,
	CategorySuperuser:   60,
}

// CategoryWeight orders unknown categories after the known ones.
func CategoryWeight(name string) int {
	if w, ok := CategoryWeights[name]; ok {
		return w
	}
	return 50
}
