// Package desc encodes and decodes the block format used by pacman
// repository and local databases.
//
// A record is a sequence of blocks separated by blank lines. Each block
// is a %KEY% header followed by one or more value lines:
//
//	%NAME%
//	ag
//
//	%DEPENDS%
//	pcre
//	xz
//
// Records map onto structs. The block key of a field is its name unless
// overridden with a `desc:"KEY"` tag. The field type decides its arity:
// scalars (strings, booleans, numbers and encoding.TextMarshaler
// implementations) hold exactly one value line and are required, pointers
// to scalars and scalars tagged `desc:",omitempty"` are optional, and
// slices of scalars hold every value line of their block in order.
//
// Value lines are never trimmed. Values that are empty or span several
// lines cannot be represented and are rejected by the encoder.
package desc
