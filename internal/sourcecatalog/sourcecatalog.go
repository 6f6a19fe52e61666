// Package sourcecatalog holds the per-product ordered list of numeric video
// source ids used by the TlSr tally frame, grounded on the one product
// captured in the retrieval pack's original configuration loader.
package sourcecatalog

// defaultProduct is used when a requested product name has no catalog.
const defaultProduct = "ATEM Television Studio HD"

var catalogs = map[string][]int{
	"ATEM Television Studio HD": {
		0, 1, 2, 3, 4, 5, 6, 7, 8,
		1000, 2001, 2002,
		3010, 3011, 3020, 3021,
		4010, 5010, 5020,
		10010, 10011,
		7001, 7002, 8001,
	},
	// A larger illustrative catalog covering a bigger production switcher,
	// to give TlSr more than one shape to exercise.
	"ATEM 2 M/E Production Studio 4K": {
		0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20,
		1000, 2001, 2002,
		3010, 3011, 3020, 3021,
		4010, 4020, 4030, 4040,
		5010, 5020,
		6000,
		7001, 7002,
		8001, 8002, 8003, 8004, 8005, 8006,
		10010, 10011, 10020, 10021,
	},
	// A minimal catalog for a small-footprint switcher.
	"ATEM Mini": {
		0, 1, 2, 3, 4,
		1000, 2001, 2002,
		10010, 10011,
	},
}

// ForProduct returns the ordered source-id list for name, falling back to
// the default product's catalog when name is unrecognized.
func ForProduct(name string) []int {
	if ids, ok := catalogs[name]; ok {
		return ids
	}
	return catalogs[defaultProduct]
}

// Products returns the list of known product names.
func Products() []string {
	names := make([]string, 0, len(catalogs))
	for name := range catalogs {
		names = append(names, name)
	}
	return names
}
