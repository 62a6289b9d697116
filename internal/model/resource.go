package model

// Generator resource types. Keep these values stable; they are the ids
// stored in case files and the names used in plant tables.
const (
	Wind       = "wind"
	Solar      = "solar"
	Hydro      = "hydro"
	NG         = "ng"
	Nuclear    = "nuclear"
	Coal       = "coal"
	Geothermal = "geothermal"
	DFO        = "dfo"
	Biomass    = "biomass"
	Other      = "other"
	Storage    = "storage"
)

// ID2Type maps generator type id to generator type.
func ID2Type() map[int]string {
	return map[int]string{
		0:  Wind,
		1:  Solar,
		2:  Hydro,
		3:  NG,
		4:  Nuclear,
		5:  Coal,
		6:  Geothermal,
		7:  DFO,
		8:  Biomass,
		9:  Other,
		10: Storage,
	}
}

// Type2ID is the inverse of ID2Type.
func Type2ID() map[string]int {
	out := make(map[string]int, 11)
	for id, name := range ID2Type() {
		out[name] = id
	}
	return out
}

// Type2Color maps generator type to a plotting colour.
func Type2Color() map[string]string {
	return map[string]string{
		Wind:       "xkcd:green",
		Solar:      "xkcd:amber",
		Hydro:      "xkcd:light blue",
		NG:         "xkcd:orchid",
		Nuclear:    "xkcd:silver",
		Coal:       "xkcd:light brown",
		Geothermal: "xkcd:hot pink",
		DFO:        "xkcd:royal blue",
		Biomass:    "xkcd:dark green",
		Other:      "xkcd:melon",
		Storage:    "xkcd:orange",
	}
}

// ProfileResources are the generator types backed by an input profile.
var ProfileResources = []string{Solar, Wind, Hydro}

func IsProfileResource(t string) bool {
	for _, r := range ProfileResources {
		if r == t {
			return true
		}
	}
	return false
}
