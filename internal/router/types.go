package router

import "errors"

// Route is the outcome of question classification.
type Route string

const (
	// RouteStructured answers via deterministic tabular computation.
	RouteStructured Route = "STRUCTURED"

	// RouteUnstructured answers via semantic retrieval over text.
	RouteUnstructured Route = "UNSTRUCTURED"
)

// Dataset is the in-memory materialization of a tabular document: column
// names plus rows of string cells. Rows are never mutated after
// materialization; computations parse values on the fly.
type Dataset struct {
	Filename string
	Columns  []string
	Rows     [][]string
}

// ErrComputationInvalid indicates a generated computation referenced an
// unknown column or could not be executed. It is recoverable: callers
// surface a templated explanation, never a stack trace.
var ErrComputationInvalid = errors.New("computation invalid")
