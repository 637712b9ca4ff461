package evaluator

import (
	"context"

	"github.com/sandrolain/gorebol/pkg/types"
)

// protector applies one PROTECT or UNPROTECT request.
type protector struct {
	set  bool // protect rather than unprotect
	word bool // lock words
	hide bool // hide words
	deep bool
	seen map[any]bool
}

func nativeProtect(ctx context.Context, c *Call) (types.Value, error) {
	hide := c.Ref("hide")
	p := &protector{set: true, word: !hide, hide: hide, deep: c.Ref("deep")}
	return p.run(ctx, c)
}

func nativeUnprotect(ctx context.Context, c *Call) (types.Value, error) {
	p := &protector{word: true, deep: c.Ref("deep")}
	return p.run(ctx, c)
}

func (p *protector) run(ctx context.Context, c *Call) (types.Value, error) {
	value := c.Arg("value")

	switch v := value.(type) {
	case types.Word:
		if v.K == types.KindWord {
			return value, p.wordValue(ctx, c, v)
		}
	case *types.Path:
		if v.K == types.KindPath {
			return value, p.wordValue(ctx, c, v)
		}
	case *types.Block:
		if v.Kind() != types.KindBlock {
			break
		}
		if c.Ref("words") {
			for _, item := range v.Values() {
				if err := p.wordValue(ctx, c, item); err != nil {
					return nil, err
				}
			}
			return value, nil
		}
		if c.Ref("values") {
			for _, item := range v.Values() {
				target, err := p.referenced(ctx, c, item)
				if err != nil {
					return nil, err
				}
				p.value(target)
			}
			return value, nil
		}
	}

	if p.hide {
		return nil, types.Errorf(types.CodeBadRefines, "protect/hide needs a word or path")
	}
	p.value(value)
	return value, nil
}

// referenced is what /values protects for a block item: the value of a word
// or path, or the item itself.
func (p *protector) referenced(ctx context.Context, c *Call, item types.Value) (types.Value, error) {
	switch x := item.(type) {
	case types.Word:
		if x.K == types.KindWord {
			return c.env.Get(x.Name)
		}
	case *types.Path:
		if x.K == types.KindPath {
			return c.t.getPath(ctx, c.env, x)
		}
	}
	return item, nil
}

// wordValue locks or hides the variable a word or path refers to, and with
// /deep its value too.
func (p *protector) wordValue(ctx context.Context, c *Call, target types.Value) error {
	var slot *types.Var
	switch x := target.(type) {
	case types.Word:
		if !x.K.IsAnyWord() {
			return nil
		}
		var err error
		if slot, err = c.env.writableVar(x.Name); err != nil {
			return err
		}
	case *types.Path:
		obj, name, err := p.pathSlot(ctx, c, x)
		if err != nil || obj == nil {
			return err
		}
		var ok bool
		if slot, ok = obj.Var(name); !ok {
			return nil
		}
	default:
		return nil
	}

	p.key(slot)
	if p.deep {
		p.value(slot.Value)
	}
	return nil
}

// pathSlot resolves a path to the object holding its last word.
func (p *protector) pathSlot(ctx context.Context, c *Call, path *types.Path) (*types.Object, string, error) {
	if len(path.Parts) < 2 {
		return nil, "", nil
	}
	last, ok := path.Parts[len(path.Parts)-1].(types.Word)
	if !ok {
		return nil, "", nil
	}
	parent, err := c.t.getPath(ctx, c.env, &types.Path{K: types.KindGetPath, Parts: path.Parts[:len(path.Parts)-1]})
	if err != nil {
		return nil, "", err
	}
	obj, ok := parent.(*types.Object)
	if !ok {
		return nil, "", nil
	}
	return obj, last.Name, nil
}

func (p *protector) key(v *types.Var) {
	if p.word {
		v.Locked = p.set
	}
	if p.hide {
		v.Hidden = p.set
	}
}

// value protects a series or object, recursing into blocks and objects
// under /deep. Cycles are visited once.
func (p *protector) value(v types.Value) {
	switch x := v.(type) {
	case *types.String:
		x.SetProtected(p.set)
	case *types.Block:
		x.SetProtected(p.set)
		if !p.deep || !p.visit(x) {
			return
		}
		for _, item := range x.Values() {
			p.value(item)
		}
	case *types.Object:
		x.SetProtected(p.set)
		if !p.deep || !p.visit(x) {
			return
		}
		for _, slot := range x.Vars() {
			p.value(slot.Value)
		}
	}
}

// visit marks a container as seen and reports whether it was new.
func (p *protector) visit(container any) bool {
	if p.seen == nil {
		p.seen = make(map[any]bool)
	}
	if p.seen[container] {
		return false
	}
	p.seen[container] = true
	return true
}
