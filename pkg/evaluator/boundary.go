package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

const (
	// EndFlag is the next index DoNext reports when the cursor was already
	// at the tail.
	EndFlag = -1
	// ThrownFlag is the next index DoNext reports alongside a throw or a
	// fatal error.
	ThrownFlag = -2
)

// doBlock evaluates every expression of blk and returns the last value.
// An empty block is unset. The first throw or error stops evaluation.
func (t *task) doBlock(ctx context.Context, env *EvalContext, blk *types.Block) (types.Value, error) {
	t.depth++
	defer func() { t.depth-- }()
	if limit := t.ev.opts.MaxDepth; limit > 0 && t.depth > limit {
		return nil, types.Errorf(types.CodeStackOverflow, "stack overflow: depth %d exceeds %d", t.depth, limit)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := types.Value(types.UnsetValue)
	for i := 0; i < blk.Len(); {
		next, v, err := t.doNext(ctx, env, blk, i)
		if err != nil {
			return nil, err
		}
		if next == EndFlag {
			break
		}
		result, i = v, next
	}
	return result, nil
}

// doNext evaluates one expression of blk starting at index.
func (t *task) doNext(ctx context.Context, env *EvalContext, blk *types.Block, index int) (int, types.Value, error) {
	if index >= blk.Len() {
		return EndFlag, types.UnsetValue, nil
	}

	// Check context cancellation
	select {
	case <-ctx.Done():
		return ThrownFlag, nil, ctx.Err()
	default:
	}

	if t.ev.opts.Debug {
		item := blk.At(index)
		t.logger.Debug("evaluating expression",
			"kind", item.Kind().String(),
			"value", types.Mold(item),
			"depth", t.depth)
	}

	return t.evalExpr(ctx, env, blk, index)
}

// evalExpr evaluates the value at index and any infix operators that
// follow it, strictly left to right.
func (t *task) evalExpr(ctx context.Context, env *EvalContext, blk *types.Block, index int) (int, types.Value, error) {
	next, v, err := t.evalItem(ctx, env, blk.At(index), blk, index+1)
	if err != nil {
		return ThrownFlag, nil, err
	}

	for next < blk.Len() {
		op, ok := t.infixAt(env, blk.At(next))
		if !ok {
			break
		}
		if next+1 >= blk.Len() {
			return ThrownFlag, nil, types.Errorf(types.CodeNoArg, "%s is missing its %s argument", op.Name, op.Params[1].Name)
		}
		after, rhs, err := t.evalItem(ctx, env, blk.At(next+1), blk, next+2)
		if err != nil {
			return ThrownFlag, nil, err
		}
		if err := op.check(op.Params[0], v); err != nil {
			return ThrownFlag, nil, err
		}
		if err := op.check(op.Params[1], rhs); err != nil {
			return ThrownFlag, nil, err
		}
		if v, err = t.call(ctx, env, op, []types.Value{v, rhs}); err != nil {
			return ThrownFlag, nil, err
		}
		next = after
	}
	return next, v, nil
}

// infixAt reports whether item is a word bound to an infix operator.
func (t *task) infixAt(env *EvalContext, item types.Value) (*Function, bool) {
	w, ok := item.(types.Word)
	if !ok || w.K != types.KindWord {
		return nil, false
	}
	v, ok := env.GetBinding(w.Name)
	if !ok {
		return nil, false
	}
	fn, ok := v.(*Function)
	if !ok || !fn.Infix {
		return nil, false
	}
	return fn, true
}

// evalItem evaluates item as if it were written in blk just before next.
// Functions consume their arguments from blk starting at next.
func (t *task) evalItem(ctx context.Context, env *EvalContext, item types.Value, blk *types.Block, next int) (int, types.Value, error) {
	switch x := item.(type) {
	case types.Word:
		switch x.K {
		case types.KindWord:
			v, err := env.Get(x.Name)
			if err != nil {
				return ThrownFlag, nil, err
			}
			if fn, ok := v.(*Function); ok {
				return t.invokeReeval(ctx, env, fn, nil, blk, next)
			}
			if types.IsUnset(v) {
				return ThrownFlag, nil, types.Errorf(types.CodeNoValue, "%s has no value", x.Name).
					WithArgs(x)
			}
			return next, v, nil

		case types.KindSetWord:
			if next >= blk.Len() {
				return ThrownFlag, nil, types.Errorf(types.CodeNeedValue, "%s: needs a value", x.Name).WithArgs(x)
			}
			after, v, err := t.evalExpr(ctx, env, blk, next)
			if err != nil {
				return ThrownFlag, nil, err
			}
			if types.IsUnset(v) {
				return ThrownFlag, nil, types.Errorf(types.CodeNeedValue, "%s: needs a value", x.Name).WithArgs(x)
			}
			if err := env.SetBinding(x.Name, v); err != nil {
				return ThrownFlag, nil, err
			}
			return after, v, nil

		case types.KindGetWord:
			v, err := env.Get(x.Name)
			if err != nil {
				return ThrownFlag, nil, err
			}
			return next, v, nil

		case types.KindLitWord:
			return next, x.As(types.KindWord), nil
		}
		return next, x, nil

	case *types.Block:
		if x.Kind() == types.KindParen {
			v, err := t.doBlock(ctx, env, x)
			if err != nil {
				return ThrownFlag, nil, err
			}
			return next, v, nil
		}
		return next, x, nil

	case *Function:
		return t.invokeReeval(ctx, env, x, nil, blk, next)

	case *types.Path:
		switch x.K {
		case types.KindPath:
			return t.evalPath(ctx, env, x, blk, next)
		case types.KindGetPath:
			v, err := t.getPath(ctx, env, x)
			if err != nil {
				return ThrownFlag, nil, err
			}
			return next, v, nil
		case types.KindSetPath:
			if next >= blk.Len() {
				return ThrownFlag, nil, types.Errorf(types.CodeNeedValue, "%s needs a value", types.Mold(x))
			}
			after, v, err := t.evalExpr(ctx, env, blk, next)
			if err != nil {
				return ThrownFlag, nil, err
			}
			if err := t.setPath(ctx, env, x, v); err != nil {
				return ThrownFlag, nil, err
			}
			return after, v, nil
		case types.KindLitPath:
			return next, x.As(types.KindPath), nil
		}
	}

	return next, item, nil
}

// invokeReeval invokes fn and, for EVAL, evaluates its result inline.
func (t *task) invokeReeval(ctx context.Context, env *EvalContext, fn *Function, refs []types.Value, blk *types.Block, next int) (int, types.Value, error) {
	after, v, err := t.invoke(ctx, env, fn, refs, blk, next)
	if err != nil || !fn.Reevaluate {
		return after, v, err
	}
	return t.evalItem(ctx, env, v, blk, after)
}
