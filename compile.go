// Copyright 2022 Questlang. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package quest

// Compile lowers the group into a block via the builder interface.
func (g *Group) Compile(b *Builder, dst Local) {
	for _, stmt := range g.statements {
		stmt.compile(b, dst)
	}
	if g.endInSemicolon || len(g.statements) == 0 {
		b.Constant(Null{}, dst)
	}
}

func (s Statement) compile(b *Builder, dst Local) {
	if !s.many {
		s.exprs[0].compile(b, dst)
		return
	}
	locals := make([]Local, len(s.exprs))
	for i, expr := range s.exprs {
		locals[i] = b.UnnamedLocal()
		expr.compile(b, locals[i])
	}
	b.CreateList(locals, dst)
}

func (e primaryExpr) compile(b *Builder, dst Local) {
	e.primary.compile(b, dst)
}

func (e binaryExpr) compile(b *Builder, dst Local) {
	lhs := b.UnnamedLocal()
	e.lhs.compile(b, lhs)

	if op, ok := binaryOpcodeFor(e.op); ok {
		e.rhs.compile(b, dst)
		b.Binary(op, lhs, dst, dst)
		return
	}
	// User-defined operators dispatch as attribute calls.
	opLocal := b.UnnamedLocal()
	b.StrConstant(e.op, opLocal)
	e.rhs.compile(b, dst)
	b.CallAttrSimple(lhs, opLocal, []Local{dst}, dst)
}

func (e assignExpr) compile(b *Builder, dst Local) {
	switch {
	case e.ident != "":
		local := b.NamedLocal(e.ident)
		e.value.compile(b, local)
		b.Mov(local, dst)

	case e.index != nil:
		src := b.UnnamedLocal()
		e.index.source.compile(b, src)
		locals := make([]Local, 0, len(e.index.args)+1)
		for _, arg := range e.index.args {
			l := b.UnnamedLocal()
			arg.compile(b, l)
			locals = append(locals, l)
		}
		e.value.compile(b, dst)
		b.IndexAssign(src, append(locals, dst), dst)

	case e.access != nil:
		// Assigning through a bare identifier passes the named slot
		// itself, so setting an attribute on an immediate can box it
		// in place.
		var obj Local
		if src, ok := e.access.source.(atomPrimary); ok {
			if ident, ok := src.atom.(identAtom); ok {
				obj = b.NamedLocal(string(ident))
			} else {
				obj = b.UnnamedLocal()
				e.access.source.compile(b, obj)
			}
		} else {
			obj = b.UnnamedLocal()
			e.access.source.compile(b, obj)
		}
		field := b.UnnamedLocal()
		if ident, ok := e.access.attr.(identAtom); ok {
			b.StrConstant(string(ident), field)
		} else {
			e.access.attr.compile(b, field)
		}
		e.value.compile(b, dst)
		b.SetAttr(obj, field, dst, dst)

	default:
		// Anything else hands the value to the target's `=` attribute.
		prim := b.UnnamedLocal()
		e.other.compile(b, prim)
		assign := b.UnnamedLocal()
		b.StrConstant("=", assign)
		e.value.compile(b, dst)
		b.CallAttrSimple(prim, assign, []Local{dst}, dst)
	}
}

func (a atomPrimary) compile(b *Builder, dst Local) {
	a.atom.compile(b, dst)
}

func (bp blockPrimary) compile(b *Builder, dst Local) {
	inner := NewBuilder(bp.body.start)
	for _, arg := range bp.args {
		inner.NamedLocal(arg)
	}
	bp.body.Compile(inner, inner.Scratch())
	b.Constant(inner.Build(), dst)
}

func (l listPrimary) compile(b *Builder, dst Local) {
	locals := make([]Local, len(l.elements))
	for i, e := range l.elements {
		locals[i] = b.UnnamedLocal()
		e.compile(b, locals[i])
	}
	b.CreateList(locals, dst)
}

func (u unaryPrimary) compile(b *Builder, dst Local) {
	if op, ok := unaryOpcodeFor(u.op); ok {
		u.rhs.compile(b, dst)
		b.Unary(op, dst, dst)
		return
	}
	opLocal := b.UnnamedLocal()
	b.StrConstant(u.op, opLocal)
	u.rhs.compile(b, dst)
	b.CallAttrSimple(dst, opLocal, nil, dst)
}

func (f fnCallPrimary) compile(b *Builder, dst Local) {
	fn := b.UnnamedLocal()
	f.fn.compile(b, fn)
	locals := make([]Local, len(f.args))
	for i, arg := range f.args {
		locals[i] = b.UnnamedLocal()
		arg.compile(b, locals[i])
	}
	b.CallSimple(fn, locals, dst)
}

func (ip *indexPrimary) compile(b *Builder, dst Local) {
	src := b.UnnamedLocal()
	ip.source.compile(b, src)
	locals := make([]Local, len(ip.args))
	for i, arg := range ip.args {
		locals[i] = b.UnnamedLocal()
		arg.compile(b, locals[i])
	}
	b.Index(src, locals, dst)
}

func (ap *attrAccessPrimary) compile(b *Builder, dst Local) {
	src := b.UnnamedLocal()
	ap.source.compile(b, src)

	if ident, ok := ap.attr.(identAtom); ok {
		b.StrConstant(string(ident), dst)
	} else {
		ap.attr.compile(b, dst)
	}
	if ap.unbound {
		b.GetUnboundAttr(src, dst, dst)
	} else {
		b.GetAttr(src, dst, dst)
	}
}

func (i intAtom) compile(b *Builder, dst Local) {
	b.Constant(Integer(i), dst)
}

func (f floatAtom) compile(b *Builder, dst Local) {
	b.Constant(Float(f), dst)
}

func (t textAtom) compile(b *Builder, dst Local) {
	b.StrConstant(string(t), dst)
}

func (i identAtom) compile(b *Builder, dst Local) {
	local := b.NamedLocal(string(i))
	b.Mov(local, dst)
}

func (s stackframeAtom) compile(b *Builder, dst Local) {
	b.Stackframe(int(s), dst)
}

func (g groupAtom) compile(b *Builder, dst Local) {
	g.group.Compile(b, dst)
}
