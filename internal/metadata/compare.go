package metadata

// Diff returns the names of the fields that differ between a and b. A field
// unset on both sides matches; set on one side only it does not.
func Diff(a, b Record) []string {
	fa, fb := a.Fields(), b.Fields()
	var diff []string
	for i := range fa {
		if fa[i].Set != fb[i].Set || fa[i].Value != fb[i].Value {
			diff = append(diff, fa[i].Name)
		}
	}
	return diff
}

// Equal reports whether a and b match on every field.
func Equal(a, b Record) bool {
	return len(Diff(a, b)) == 0
}

// DeviceMismatch reports whether both records name a device make, or both
// name a device model, and the two values differ. A tag present on only
// one side is not a mismatch.
func DeviceMismatch(baseline, candidate Record) bool {
	return bothSetAndDiffer(baseline.DeviceMake, candidate.DeviceMake) ||
		bothSetAndDiffer(baseline.DeviceModel, candidate.DeviceModel)
}

func bothSetAndDiffer(a, b *string) bool {
	return a != nil && b != nil && *a != *b
}
