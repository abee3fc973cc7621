package brktype

// ProgressEvent represents a progress update while packing an archive.
type ProgressEvent struct {
	// Stage identifies the current phase of the operation.
	Stage ProgressStage

	// Path is the virtual path currently being processed, if applicable.
	Path string

	// BytesDone is the number of stored bytes written so far.
	BytesDone uint64

	// FilesDone is the number of files written so far.
	FilesDone int

	// FilesTotal is the total number of files.
	// Zero indicates the total is unknown (e.g., during enumeration).
	FilesTotal int
}

// ProgressStage identifies the current phase of an operation.
type ProgressStage uint8

// Progress stages for packing.
const (
	// StageEnumerating indicates the resource tree is being walked.
	StageEnumerating ProgressStage = iota

	// StageEncoding indicates files are being compressed, encrypted and written.
	StageEncoding

	// StageWritingIndex indicates the index and final header are being written.
	StageWritingIndex
)

// String returns the string representation of the stage.
func (s ProgressStage) String() string {
	switch s {
	case StageEnumerating:
		return "enumerating"
	case StageEncoding:
		return "encoding"
	case StageWritingIndex:
		return "writing index"
	default:
		return "unknown"
	}
}

// ProgressFunc receives progress updates.
// Updates are delivered from the goroutine that writes the archive.
type ProgressFunc func(ProgressEvent)
