package cel

// Entry is one visible cell: the normalized center coordinates of the cell
// within the grid and its block-averaged color.
//
// A carries the computed average alpha, not a forced opaque value. Preview
// rendering draws cells fully opaque; the file keeps the true average for
// downstream consumers.
type Entry struct {
	U, V       float32
	R, G, B, A uint8
}
