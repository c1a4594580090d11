package dto

// set overwrites *dst when the patch field is present.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
