package query

// Recorder receives compilation events. Implementations must be safe for
// concurrent use.
type Recorder interface {
	ResolutionCached(hit bool)
	FilterSkipped(reason string)
}

type nopRecorder struct{}

func (nopRecorder) ResolutionCached(bool) {}
func (nopRecorder) FilterSkipped(string)  {}

// Reasons passed to Recorder.FilterSkipped.
const (
	SkipUnresolvedField = "unresolved_field"
	SkipNoTextForm      = "no_text_form"
)
