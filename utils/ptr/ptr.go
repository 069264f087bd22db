// Package ptr provides pointer helpers for optional fields.
package ptr

// To returns a pointer to v.
func To[T any](v T) *T {
	return &v
}
