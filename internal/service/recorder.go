package service

// DocumentRecorder receives document lifecycle events for metrics.
type DocumentRecorder interface {
	RecordDocumentCreated(withFile bool, size int64)
	RecordDocumentSigned()
}

type noopRecorder struct{}

func (noopRecorder) RecordDocumentCreated(bool, int64) {}
func (noopRecorder) RecordDocumentSigned()             {}
