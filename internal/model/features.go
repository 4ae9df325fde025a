package model

// FeatureVector is an ordered mapping from a fixed, versioned list of feature
// names to numeric values. The name list and its order are established at
// construction and never change afterwards; values for names that were never
// set default to 0. A vector is built fresh per analysis call and must not be
// mutated once it has been handed to the classifier adapter.
type FeatureVector struct {
	version string
	names   []string
	values  map[string]float64
}

// NewFeatureVector creates a vector with the given schema version and ordered
// feature name list. The names slice is copied.
func NewFeatureVector(version string, names []string) *FeatureVector {
	n := make([]string, len(names))
	copy(n, names)
	return &FeatureVector{
		version: version,
		names:   n,
		values:  make(map[string]float64, len(n)),
	}
}

// Version returns the feature schema version.
func (v *FeatureVector) Version() string { return v.version }

// Set assigns a value to a named feature. Names outside the declared schema
// are ignored so a stale caller cannot widen the vector.
func (v *FeatureVector) Set(name string, val float64) {
	for _, n := range v.names {
		if n == name {
			v.values[name] = val
			return
		}
	}
}

// Get returns the value for name, or 0 if it was never set.
func (v *FeatureVector) Get(name string) float64 {
	return v.values[name]
}

// Has reports whether the feature was explicitly set.
func (v *FeatureVector) Has(name string) bool {
	_, ok := v.values[name]
	return ok
}

// Names returns a copy of the ordered feature name list.
func (v *FeatureVector) Names() []string {
	out := make([]string, len(v.names))
	copy(out, v.names)
	return out
}

// Values returns the feature values in schema order, zero-filled for any
// feature that was never set.
func (v *FeatureVector) Values() []float64 {
	out := make([]float64, len(v.names))
	for i, n := range v.names {
		out[i] = v.values[n]
	}
	return out
}

// Map returns a name -> value copy of the set features, mainly for logging
// and API responses.
func (v *FeatureVector) Map() map[string]float64 {
	out := make(map[string]float64, len(v.values))
	for k, val := range v.values {
		out[k] = val
	}
	return out
}
