package domain

import "time"

// PublishOptions controls a single publish.
type PublishOptions struct {
	// Index submits content for search/discovery indexing before object placement.
	Index bool

	// ForceOverwriteOnMirror lets the serving mirror replace an existing file.
	ForceOverwriteOnMirror bool
}

// Destination identifies a publish target.
type Destination string

// Publish destinations.
const (
	DestinationIndex       Destination = "index"
	DestinationObjectStore Destination = "object_store"
	DestinationMirror      Destination = "mirror"
)

// DestinationStatus is what happened at one destination.
type DestinationStatus string

// Destination statuses.
const (
	// StatusWritten means the destination was updated.
	StatusWritten DestinationStatus = "written"

	// StatusAlreadyPresent means an existing target was left untouched.
	StatusAlreadyPresent DestinationStatus = "already_present"

	// StatusFailed means the write failed.
	StatusFailed DestinationStatus = "failed"
)

// DestinationResult records the effect of a publish on one destination.
type DestinationResult struct {
	Destination Destination
	Status      DestinationStatus
	Location    string
	Err         error
}

// PublishRecord describes what was sent where. It is built right before the
// publish call and discarded after; nothing is persisted between files.
type PublishRecord struct {
	// Source is the base name of the published file.
	Source string

	// Path is the resolved hierarchy path.
	Path HierarchyPath

	// Destinations lists the destinations touched, in order.
	Destinations []DestinationResult

	// Overwrite is the mirror overwrite flag in effect.
	Overwrite bool

	// Bytes is the size of the published artifact.
	Bytes int64
}

// Result returns the result for a destination, if it was touched.
func (r *PublishRecord) Result(d Destination) (DestinationResult, bool) {
	for _, res := range r.Destinations {
		if res.Destination == d {
			return res, true
		}
	}
	return DestinationResult{}, false
}

// IndexEntry is the catalogue record submitted for indexing.
type IndexEntry struct {
	// Path is the hierarchy path; it is the catalogue key.
	Path HierarchyPath

	// FileName is the published artifact's base name.
	FileName string

	// Handler names the handler family that classified the file.
	Handler string

	// Category is the classification category.
	Category Category

	// Fields are the classification's extracted fields.
	Fields map[string]string

	// Format is the detected container format of the indexed content.
	Format string

	// Attributes are global attributes read from the content header.
	Attributes map[string]string

	// Size is the size in bytes of the indexed content.
	Size int64

	// SHA256 is the hex digest of the indexed content.
	SHA256 string

	// IndexedAt is when the entry was written.
	IndexedAt time.Time
}
