package formdata

type phaseKind int

const (
	phaseDelimiting phaseKind = iota + 1
	phaseHeading
	phaseHeaded
	phaseHeader
	phaseNext
	phaseEOF
)

// phase is the scanner state together with its scratch values. It is
// always assigned as a whole, so a stale offset or inBody flag cannot
// survive a transition. offset is meaningful in phaseHeading only,
// inBody in phaseDelimiting only.
type phase struct {
	kind   phaseKind
	offset int
	inBody bool
}
