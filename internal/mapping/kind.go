package mapping

//go:generate go tool stringer -type=Kind -linecomment -output=kind_string.go

// Kind is the role a column plays in a conversion.
type Kind int

const (
	KindID          Kind = iota // id
	KindSession                 // session
	KindItem                    // item
	KindParticipant             // participant
	KindIgnored                 // ignored
	KindUnmapped                // unmapped
)
