// Package expand implements the expansion engine, the column remapper, and
// leaf emission: recursively walking nested template instances, remapping
// columns from caller to callee parameter scope, and producing triple
// batches.
package expand

import (
	"fmt"

	"github.com/oxhq/stottr/internal/column"
	"github.com/oxhq/stottr/internal/errs"
	"github.com/oxhq/stottr/internal/lower"
	"github.com/oxhq/stottr/internal/rdf"
	"github.com/oxhq/stottr/internal/template"
	"github.com/oxhq/stottr/internal/validate"
)

// scope bundles a batch with the column-scope metadata the expansion engine
// threads alongside it: which dynamic columns carry which RDF types, which
// parameters were satisfied by a static constant instead of a physical
// column, and which caller unique-subsets still hold.
type scope struct {
	batch         *column.Batch
	dynamic       map[string]validate.ColumnInfo
	static        map[string]lower.Lowered
	uniqueSubsets [][]string
}

// remapInstance translates `batch`/caller-scope columns into the callee's
// parameter scope for one instance call.
//
// Column sharing is zero-copy: renaming and projecting never duplicate row
// data, only the name->slice bindings (see internal/column doc comment),
// which is what lets a caller column referenced by k sibling instances be
// bound into k child scopes without k times the memory.
func remapInstance(caller scope, inst template.Instance, childSig template.Signature) (scope, error) {
	if len(inst.ArgumentList) != len(childSig.ParameterList) {
		return scope{}, fmt.Errorf("remap: instance of %s has %d arguments, signature wants %d",
			childSig.TemplateName, len(inst.ArgumentList), len(childSig.ParameterList))
	}

	renameMap := map[string]string{} // caller column name -> callee param name
	keepCols := []string{}           // caller column names to keep (pre-rename)
	childDynamic := map[string]validate.ColumnInfo{}
	childStatic := map[string]lower.Lowered{}
	listExpandCols := map[string]bool{} // callee param names needing explosion
	extraCols := []*column.Column{}     // list_expand constants promoted to dynamic
	varToParam := map[string]string{}   // caller variable name -> callee param name, for unique-subset renaming

	height := caller.batch.Height()

	for i, arg := range inst.ArgumentList {
		param := childSig.ParameterList[i]

		switch arg.Kind {
		case template.ArgList:
			return scope{}, &errs.ListArgumentUnsupportedError{Argument: param.VariableName}

		case template.ArgVariable:
			v := arg.Variable
			if info, ok := caller.dynamic[v]; ok {
				renameMap[v] = param.VariableName
				keepCols = append(keepCols, v)
				childDynamic[param.VariableName] = info
				varToParam[v] = param.VariableName
				if arg.ListExpand {
					listExpandCols[param.VariableName] = true
				}
				continue
			}
			if lw, ok := caller.static[v]; ok {
				childStatic[param.VariableName] = lw
				continue
			}
			return scope{}, &errs.UnknownVariableError{Variable: v}

		case template.ArgConstant:
			if _, isList := arg.Constant.(rdf.ListTerm); isList && inst.ListExpander == template.ExpanderNone {
				return scope{}, &errs.ListOutsideExpanderError{Argument: param.VariableName}
			}
			lw, err := lower.ConstantToExpr(arg.Constant, param.PType)
			if err != nil {
				return scope{}, err
			}
			if arg.ListExpand {
				col := lw.Broadcast(param.VariableName, height)
				extraCols = append(extraCols, col)
				childDynamic[param.VariableName] = validate.ColumnInfo{Type: lw.Type, LanguageTag: lw.LanguageTag}
				listExpandCols[param.VariableName] = true
			} else {
				childStatic[param.VariableName] = lw
			}

		default:
			return scope{}, fmt.Errorf("remap: unknown argument kind %d", arg.Kind)
		}
	}

	projected, err := caller.batch.Project(keepCols)
	if err != nil {
		return scope{}, err
	}
	renamed := projected.Rename(renameMap)

	for _, c := range extraCols {
		renamed, err = renamed.WithColumn(c)
		if err != nil {
			return scope{}, err
		}
	}

	if inst.ListExpander != template.ExpanderNone && len(listExpandCols) > 0 {
		var cols []string
		for c := range listExpandCols {
			cols = append(cols, c)
		}
		switch inst.ListExpander {
		case template.ExpanderCross:
			renamed, err = column.ExplodeCross(renamed, cols)
		case template.ExpanderZipMin:
			renamed, err = column.ExplodeZip(renamed, cols, true)
		case template.ExpanderZipMax:
			renamed, err = column.ExplodeZip(renamed, cols, false)
		}
		if err != nil {
			return scope{}, err
		}
	}

	childUnique := propagateUniqueSubsets(caller.uniqueSubsets, varToParam, listExpandCols)

	return scope{
		batch:         renamed,
		dynamic:       childDynamic,
		static:        childStatic,
		uniqueSubsets: childUnique,
	}, nil
}

// propagateUniqueSubsets keeps a caller unique_subset only if every member
// variable was passed as a plain Variable argument (present in varToParam
// and not list-expanded), renaming members to callee parameter names.
func propagateUniqueSubsets(callerSubsets [][]string, varToParam map[string]string, listExpanded map[string]bool) [][]string {
	var out [][]string
	for _, subset := range callerSubsets {
		renamed := make([]string, 0, len(subset))
		ok := true
		for _, v := range subset {
			pname, found := varToParam[v]
			if !found || listExpanded[pname] {
				ok = false
				break
			}
			renamed = append(renamed, pname)
		}
		if ok {
			out = append(out, renamed)
		}
	}
	return out
}
