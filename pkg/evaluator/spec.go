package evaluator

import (
	"github.com/sandrolain/gorebol/pkg/types"
)

// parseSpec reads a function spec block into parameters.
//
// Words declare parameters ('lit and :get select how they are gathered),
// /refinements start optional groups, a block after a parameter restricts
// its datatypes, and strings are documentation. A return: set-word and its
// block are accepted and ignored.
func parseSpec(spec *types.Block) ([]Param, error) {
	var (
		params     []Param
		refinement string
		seen       = make(map[string]bool)
		skipTypes  bool
	)
	for _, item := range spec.Values() {
		switch x := item.(type) {
		case *types.String:
			continue

		case *types.Block:
			if skipTypes {
				skipTypes = false
				continue
			}
			if len(params) == 0 {
				return nil, specError("datatype block without a parameter: %s", types.Mold(x))
			}
			last := &params[len(params)-1]
			if last.Class == ParamRefinement {
				return nil, specError("refinement /%s cannot take datatypes", last.Name)
			}
			ts, err := typesetOf(x)
			if err != nil {
				return nil, err
			}
			last.Types = ts

		case types.Word:
			skipTypes = false
			p := Param{Name: x.Name, Refinement: refinement, Types: types.AnyValue}
			switch x.K {
			case types.KindWord:
				p.Class = ParamNormal
			case types.KindLitWord:
				p.Class, p.Types = ParamLit, types.AnyType
			case types.KindGetWord:
				p.Class, p.Types = ParamGet, types.AnyType
			case types.KindRefinement:
				p.Class, p.Refinement = ParamRefinement, ""
				p.Types = types.TypeSetOf(types.KindLogic, types.KindNone)
				refinement = x.Name
			case types.KindSetWord:
				if x.Canon() == "return" {
					skipTypes = true
					continue
				}
				return nil, specError("invalid spec word %s", types.Mold(x))
			default:
				return nil, specError("invalid spec word %s", types.Mold(x))
			}
			if seen[x.Canon()] {
				return nil, specError("duplicate parameter %s", x.Name)
			}
			seen[x.Canon()] = true
			params = append(params, p)

		default:
			return nil, specError("invalid spec value %s", types.Mold(item))
		}
	}
	return params, nil
}

func typesetOf(blk *types.Block) (types.TypeSet, error) {
	var ts types.TypeSet
	for _, item := range blk.Values() {
		w, ok := item.(types.Word)
		if !ok || w.K != types.KindWord {
			return 0, specError("invalid datatype %s", types.Mold(item))
		}
		set, ok := types.LookupTypeSet(w.Name)
		if !ok {
			return 0, specError("unknown datatype %s", w.Name)
		}
		ts = ts.Union(set)
	}
	return ts, nil
}

func specError(format string, args ...interface{}) *types.Error {
	return types.Errorf(types.CodeInvalidArg, "function spec: "+format, args...)
}
