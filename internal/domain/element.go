package domain

// Category is one of the ten periodic-table classes used for cell coloring.
type Category string

const (
	CategoryAlkaliMetal         Category = "alkali-metal"
	CategoryAlkalineEarthMetal  Category = "alkaline-earth-metal"
	CategoryTransitionMetal     Category = "transition-metal"
	CategoryPostTransitionMetal Category = "post-transition-metal"
	CategoryMetalloid           Category = "metalloid"
	CategoryNonmetal            Category = "nonmetal"
	CategoryHalogen             Category = "halogen"
	CategoryNobleGas            Category = "noble-gas"
	CategoryLanthanide          Category = "lanthanide"
	CategoryActinide            Category = "actinide"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryAlkaliMetal, CategoryAlkalineEarthMetal, CategoryTransitionMetal,
		CategoryPostTransitionMetal, CategoryMetalloid, CategoryNonmetal,
		CategoryHalogen, CategoryNobleGas, CategoryLanthanide, CategoryActinide:
		return true
	}
	return false
}

// Element is static reference data. Loaded once at startup, never written by
// this service.
type Element struct {
	Symbol                string   `json:"symbol"`
	Name                  string   `json:"name"`
	AtomicNumber          int      `json:"atomicNumber"`
	AtomicMass            float64  `json:"atomicMass"`
	Category              Category `json:"category"`
	Group                 int      `json:"group"`
	Period                int      `json:"period"`
	Block                 string   `json:"block"`
	ElectronConfiguration string   `json:"electronConfiguration"`
	XPos                  int      `json:"xPos"`
	YPos                  int      `json:"yPos"`
}
