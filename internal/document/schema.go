package document

import (
	_ "embed"
	"encoding/json"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"

	"github.com/roach88/teachsync/internal/model"
)

//go:embed schema.cue
var schemaCUE string

// CheckSchema unifies the document with the embedded #Document CUE
// definition and reports each type or shape mismatch as a violation.
//
// It complements Validate: Validate reports missing data in a fixed order,
// CheckSchema reports data of the wrong type or format (negative years,
// malformed dates, unknown audit actions).
func CheckSchema(doc *model.Document) []model.Violation {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return []model.Violation{{Path: "schema", Message: "compile schema: " + err.Error()}}
	}
	def := schema.LookupPath(cue.ParsePath("#Document"))

	data, err := json.Marshal(doc)
	if err != nil {
		return []model.Violation{{Path: "document", Message: "encode document: " + err.Error()}}
	}
	val := ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := val.Err(); err != nil {
		return []model.Violation{{Path: "document", Message: "load document: " + err.Error()}}
	}

	err = def.Unify(val).Validate(cue.Concrete(true))
	if err == nil {
		return nil
	}

	var vs []model.Violation
	for _, e := range cueerrors.Errors(err) {
		path := e.Path()
		// Drop the definition selector so paths match the document's keys.
		if len(path) > 0 && strings.HasPrefix(path[0], "#") {
			path = path[1:]
		}
		vs = append(vs, model.Violation{
			Path:    strings.Join(path, "."),
			Message: e.Error(),
		})
	}
	return vs
}
