package domain

// AttributeOverrides lets deployments correct or complete attachment
// metadata without re-ingesting: values addressable globally or per
// filename. Per-file values win over global ones, and both win over what
// the remote attribute bag carries.
type AttributeOverrides struct {
	// Global applies to every attachment
	Global map[string]string `yaml:"global"`

	// ByFile maps an exact filename to its overrides
	ByFile map[string]map[string]string `yaml:"files"`
}

// Apply layers the overrides for filename on top of the raw attribute bag
// and returns the merged bag. The input map is not modified.
func (o *AttributeOverrides) Apply(filename string, raw map[string]any) map[string]any {
	if o == nil || (len(o.Global) == 0 && len(o.ByFile) == 0) {
		return raw
	}
	merged := make(map[string]any, len(raw)+len(o.Global))
	for k, v := range raw {
		merged[k] = v
	}
	for k, v := range o.Global {
		merged[k] = v
	}
	for k, v := range o.ByFile[filename] {
		merged[k] = v
	}
	return merged
}
