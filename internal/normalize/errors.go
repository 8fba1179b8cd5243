package normalize

import "fmt"

// ImportError means the whole file was rejected and nothing may be registered.
type ImportError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import %s: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("import %s: %s", e.FileName, e.Reason)
}

func (e *ImportError) Unwrap() error { return e.Err }

func importError(fileName, reason string, err error) error {
	return &ImportError{FileName: fileName, Reason: reason, Err: err}
}

// Stage names the step at which a single candidate or record was rejected.
type Stage string

const (
	StageGeometry    Stage = "geometry"
	StageProperties  Stage = "properties"
	StagePropertySet Stage = "property_set"
	StageMesh        Stage = "mesh"
	StageElement     Stage = "element"
)

// Failure is a recovered, non-fatal problem. The import still succeeds.
type Failure struct {
	Subject string `json:"subject"`
	Stage   Stage  `json:"stage"`
	Cause   string `json:"cause"`
}
