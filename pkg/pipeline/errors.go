package pipeline

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"

	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/data"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/loader"
	"github.com/Raffy0-1/Stellar-pathways-journey-to-Alpha-Centauri/pkg/schema"
)

// ErrNoDecision is returned when every source of a run failed.
var ErrNoDecision = eris.New("pipeline: no decision, every source failed")

// SchemaMismatchError reports feature vectors that do not fit the schema a
// model was trained on, either by width or by column order.
type SchemaMismatchError struct {
	Schema    string
	Want, Got int
	WantOrder []string
	GotOrder  []string
}

func (e *SchemaMismatchError) Error() string {
	if e.GotOrder != nil && e.Want == e.Got {
		return fmt.Sprintf("pipeline: %s: column order %v does not match fitted order %v", e.Schema, e.GotOrder, e.WantOrder)
	}
	return fmt.Sprintf("pipeline: %s: vector has %d columns, model was fitted on %d", e.Schema, e.Got, e.Want)
}

// Skip reasons, also used as metric labels.
const (
	ReasonLoad         = "load"
	ReasonSchema       = "schema"
	ReasonInsufficient = "insufficient_data"
	ReasonData         = "bad_data"
)

// sourceFailure classifies errors that exclude one source from a run
// without aborting it. Anything else is a contract violation.
func sourceFailure(err error) (string, bool) {
	var le *data.LoadError
	var de *data.DataError
	var se *schema.SchemaError
	var ie *loader.InsufficientDataError
	switch {
	case errors.As(err, &le):
		return ReasonLoad, true
	case errors.As(err, &de):
		return ReasonData, true
	case errors.As(err, &se):
		return ReasonSchema, true
	case errors.As(err, &ie):
		return ReasonInsufficient, true
	}
	return "", false
}
