// Completion: 100% - Tree-walking evaluator complete
package main

import (
	"fmt"
)

// Evaluator is the dispatch table over AST variants spec §4.7 describes:
// one handler per node kind, each taking the node and the current scope
// and returning a Box. moduleScope is also where method resolution's
// second and third steps (TypeName_method, generic method) look.
type Evaluator struct {
	diags       *DiagnosticCollector
	arena       *Arena
	heap        *Heap
	moduleScope *Scope
}

func NewEvaluator(diags *DiagnosticCollector, arena *Arena, heap *Heap) *Evaluator {
	return &Evaluator{diags: diags, arena: arena, heap: heap}
}

func (e *Evaluator) roots(scope *Scope) RootProvider {
	return func(mark func(Box)) {
		for cur := scope; cur != nil; cur = cur.parent {
			cur.dict.each(func(_ StrView, v Box) { mark(v) })
		}
	}
}

func (e *Evaluator) currentCtx() *EvalContext {
	ctx := CurrentContext()
	if ctx == nil {
		ctx = &EvalContext{Arena: e.arena, Heap: e.heap}
		contextLocal.Set(ctx)
	}
	return ctx
}

// EvalProgram runs every top-level statement into a fresh module scope
// (the "transparent block" of the GLOSSARY), binds the native prelude,
// then calls `main` with argv. It returns the Box main produced (or an
// error/state box). The bool is false only when the top level evaluated
// without error and no `main` is bound; a top-level error returns true.
func (e *Evaluator) EvalProgram(prog *Program, argv []string) (Box, bool) {
	e.moduleScope = NewScope(nil, "module")
	bindNatives(e, e.moduleScope)

	for _, stmt := range prog.Statements {
		v := e.evalStatement(stmt, e.moduleScope)
		if v.IsError() {
			return v, true
		}
	}

	mainFn, ok := e.moduleScope.Lookup("main")
	if !ok {
		return BoxError(NewInterpreterError(SourceLocation{}, "no 'main' function defined")), false
	}

	// main is always called with argv available, but most example programs
	// declare it with zero parameters; only pass the array along when main
	// actually declares a parameter to receive it.
	var callArgs []Box
	if fr, ok := e.asFunctionRecord(mainFn); ok && len(fr.Params) > 0 {
		argBoxes := make([]Box, len(argv))
		for i, a := range argv {
			argBoxes[i] = e.boxString(a)
		}
		fixed := NewFixedArray(e.arena, len(argBoxes))
		fa := fixed.payload.(*FixedArray)
		for _, b := range argBoxes {
			_ = fa.Append(b)
		}
		callArgs = []Box{BoxArena(fixed)}
	}
	result := e.invoke(mainFn, callArgs, SourceLocation{})
	return result, true
}

func (e *Evaluator) boxString(s string) Box {
	ctx := e.currentCtx()
	view := NewArenaString(ctx.Arena, s)
	obj := ctx.Arena.AllocObject(TypeStringBuf, &stringBuf{s: view.String()})
	return BoxArena(obj)
}

// ---------------------------------------------------------------------
// Statements
// ---------------------------------------------------------------------

func (e *Evaluator) evalBlock(stmts []Statement, scope *Scope) Box {
	last := BoxNull()
	for _, stmt := range stmts {
		v := e.evalStatement(stmt, scope)
		if v.IsError() || v.IsState() {
			return v
		}
		last = v
	}
	return last
}

func (e *Evaluator) evalStatement(stmt Statement, scope *Scope) Box {
	switch n := stmt.(type) {
	case *ExprStmt:
		return e.evalExpr(n.Expr, scope)
	case *DiscardStmt:
		return BoxNull()
	case *ConstDecl:
		if scope.IsConstLocal(n.Name) {
			return BoxError(errFromDiag(ImmutableUpdateError(n.Name, n.Pos())))
		}
		v := e.evalExpr(n.Value, scope)
		if v.IsError() || v.IsState() {
			return v
		}
		scope.DefineConst(n.Name, v)
		return v
	case *MutDecl:
		v := e.evalExpr(n.Value, scope)
		if v.IsError() || v.IsState() {
			return v
		}
		scope.DefineLocal(n.Name, v)
		return v
	case *AssignStmt:
		v := e.evalExpr(n.Value, scope)
		if v.IsError() || v.IsState() {
			return v
		}
		for cur := scope; cur != nil; cur = cur.parent {
			if _, ok := cur.dict.Find(NewStrView(n.Name)); ok {
				if cur.IsConstLocal(n.Name) {
					return BoxError(errFromDiag(ImmutableUpdateError(n.Name, n.Pos())))
				}
				break
			}
		}
		if !scope.Assign(n.Name, v) {
			return BoxError(errFromDiag(UndefinedVariableError(n.Name, n.Pos())))
		}
		return v
	case *FnDecl:
		fr := &FunctionRecord{Name: n.Name, Params: n.Params, Body: n.Body, Expr: n.Expr, Captured: scope, IsGenerator: n.IsGenerator}
		obj := e.heap.Alloc(TypeFunctionRecord, 0, fr, e.roots(scope))
		box := BoxHeap(obj)
		scope.DefineLocal(n.Name, box)
		return box
	case *StructDecl:
		tmpl := &StructTemplate{Name: n.Name, Fields: n.Fields}
		obj := e.arena.AllocObject(TypeStructTemplate, tmpl)
		box := BoxArena(obj)
		scope.DefineLocal(n.Name, box)
		return box
	case *TraitDecl, *MacroDecl, *ModDecl:
		return e.notImplemented(stmt.Pos(), "this declaration form")
	case *UseStmt:
		return e.notImplemented(n.Pos(), "module loading (use)")
	case *ReturnStmt:
		v := BoxNull()
		if n.Value != nil {
			v = e.evalExpr(n.Value, scope)
			if v.IsError() {
				return v
			}
		}
		return BoxStateValue(StateReturn, v)
	case *YieldStmt:
		v := BoxNull()
		if n.Value != nil {
			v = e.evalExpr(n.Value, scope)
			if v.IsError() {
				return v
			}
		}
		ctx := e.currentCtx()
		if ctx.CurrentGenerator == nil {
			return BoxError(NewInterpreterError(n.Pos(), "yield outside a generator"))
		}
		yieldFromGenerator(ctx.CurrentGenerator, v)
		return BoxNull()
	case *DoneStmt:
		return BoxState(StateDone)
	case *LoopExpr:
		return e.evalLoop(n, scope)
	default:
		return BoxError(NewInterpreterError(stmt.Pos(), "internal: unhandled statement %T", stmt))
	}
}

func errFromDiag(d Diagnostic) *ErrorValue {
	return &ErrorValue{ID: d.ID, Category: CategoryInterpreter, Message: d.Message, Location: d.Location}
}

func (e *Evaluator) notImplemented(loc SourceLocation, feature string) Box {
	return BoxError(&ErrorValue{ID: newDiagnosticID(), Category: CategoryNotImplemented, Message: fmt.Sprintf("%s is not implemented", feature), Location: loc})
}

// ---------------------------------------------------------------------
// Expressions
// ---------------------------------------------------------------------

func (e *Evaluator) evalExpr(expr Expression, scope *Scope) Box {
	switch n := expr.(type) {
	case *Identifier:
		if v, ok := scope.Lookup(n.Name); ok {
			return v
		}
		return BoxError(errFromDiag(UndefinedVariableError(n.Name, n.Pos())))
	case *TypeRef:
		if v, ok := scope.Lookup(n.Name); ok {
			return v
		}
		return BoxError(errFromDiag(UndefinedVariableError(n.Name, n.Pos())))
	case *TagLiteral:
		b, err := BoxTagSymbol(n.Name)
		if err != nil {
			return BoxError(NewInterpreterError(n.Pos(), "%s", err.Error()))
		}
		return b
	case *IntLiteral:
		return BoxInt(n.Value)
	case *DoubleLiteral:
		return BoxFloat(float32(n.Value))
	case *FloatLiteral:
		return BoxFloat(n.Value)
	case *StringLiteral:
		return e.boxString(n.Value)
	case *BinaryExpr:
		return e.evalBinary(n, scope)
	case *UnaryExpr:
		return e.evalUnary(n, scope)
	case *CallExpr:
		return e.evalCall(n, scope)
	case *MemberExpr:
		return e.evalMember(n, scope)
	case *ObjectLiteral:
		return e.evalObjectLiteral(n, scope)
	case *FnExpr:
		fr := &FunctionRecord{Params: n.Params, Body: n.Body, Expr: n.Expr, Captured: scope}
		obj := e.heap.Alloc(TypeFunctionRecord, 0, fr, e.roots(scope))
		return BoxHeap(obj)
	case *LetExpr:
		return e.evalLet(n, scope)
	case *IfExpr:
		return e.evalIf(n, scope)
	case *MatchExpr:
		return e.evalMatch(n, scope)
	case *BlockExpr:
		return e.evalBlock(n.Statements, scope)
	case *LoopExpr:
		return e.evalLoop(n, scope)
	default:
		return BoxError(NewInterpreterError(expr.Pos(), "internal: unhandled expression %T", expr))
	}
}

func (e *Evaluator) evalLet(n *LetExpr, scope *Scope) Box {
	child := NewScope(scope, "")
	for _, b := range n.Bindings {
		v := e.evalExpr(b.Value, child)
		if v.IsError() || v.IsState() {
			return v
		}
		child.DefineLocal(b.Name, v)
	}
	return e.evalBlock(n.Body, child)
}

func (e *Evaluator) evalIf(n *IfExpr, scope *Scope) Box {
	cond := e.evalExpr(n.Cond, scope)
	if cond.IsError() || cond.IsState() {
		return cond
	}
	if cond.Truthy() {
		return e.evalBlock(n.Then, NewScope(scope, ""))
	}
	if n.Else != nil {
		return e.evalBlock(n.Else, NewScope(scope, ""))
	}
	return BoxNull()
}

func (e *Evaluator) evalMatch(n *MatchExpr, scope *Scope) Box {
	scrut := e.evalExpr(n.Scrutinee, scope)
	if scrut.IsError() || scrut.IsState() {
		return scrut
	}
	for _, arm := range n.Arms {
		if arm.Cond == nil {
			return e.evalExpr(arm.Body, scope)
		}
		cv := e.evalExpr(arm.Cond, scope)
		if cv.IsError() || cv.IsState() {
			return cv
		}
		if scrut.Equal(cv) {
			return e.evalExpr(arm.Body, scope)
		}
	}
	return BoxError(NewInterpreterError(n.Pos(), "no match arm selected"))
}

// ---------------------------------------------------------------------
// Binary / unary operators
// ---------------------------------------------------------------------

func (e *Evaluator) evalBinary(n *BinaryExpr, scope *Scope) Box {
	l := e.evalExpr(n.Left, scope)
	if l.IsError() || l.IsState() {
		return l
	}
	r := e.evalExpr(n.Right, scope)
	if r.IsError() || r.IsState() {
		return r
	}
	return e.applyBinaryOp(n.Op, l, r, n.Pos())
}

func (e *Evaluator) applyBinaryOp(op string, l, r Box, loc SourceLocation) Box {
	switch op {
	case "=":
		return BoxBool(l.Equal(r))
	case "!=":
		return BoxBool(!l.Equal(r))
	case "&":
		return BoxBool(l.Truthy() && r.Truthy())
	case "|":
		return BoxBool(l.Truthy() || r.Truthy())
	case "<", ">":
		return e.compare(op, l, r, loc)
	case "+":
		if s, ok := e.concatStrings(l, r); ok {
			return s
		}
		return e.arith(op, l, r, loc)
	case "-", "*", "/", "%":
		return e.arith(op, l, r, loc)
	default:
		return BoxError(NewInterpreterError(loc, "unsupported operator %q", op))
	}
}

func (e *Evaluator) concatStrings(l, r Box) (Box, bool) {
	ls, lok := stringOf(l)
	rs, rok := stringOf(r)
	if !lok || !rok {
		return Box{}, false
	}
	return e.boxString(ls + rs), true
}

func stringOf(b Box) (string, bool) {
	if b.Tag != PtrArena {
		return "", false
	}
	return b.Arena().asString()
}

func (e *Evaluator) compare(op string, l, r Box, loc SourceLocation) Box {
	if ls, lok := stringOf(l); lok {
		if rs, rok := stringOf(r); rok {
			c := NewStrView(ls).Compare(NewStrView(rs))
			if op == "<" {
				return BoxBool(c < 0)
			}
			return BoxBool(c > 0)
		}
	}
	lf, lok := numericFloat(l)
	rf, rok := numericFloat(r)
	if !lok || !rok {
		return BoxError(NewInterpreterError(loc, "cannot compare %v and %v", l.Tag, r.Tag))
	}
	if op == "<" {
		return BoxBool(lf < rf)
	}
	return BoxBool(lf > rf)
}

func (e *Evaluator) arith(op string, l, r Box, loc SourceLocation) Box {
	if l.Tag == TagInt && r.Tag == TagInt {
		a, b := l.Int(), r.Int()
		switch op {
		case "+":
			return BoxInt(a + b)
		case "-":
			return BoxInt(a - b)
		case "*":
			return BoxInt(a * b)
		case "/":
			if b == 0 {
				return BoxError(NewInterpreterError(loc, "division by zero"))
			}
			return BoxInt(a / b)
		case "%":
			if b == 0 {
				return BoxError(NewInterpreterError(loc, "division by zero"))
			}
			return BoxInt(a % b)
		}
	}
	lf, lok := numericFloat(l)
	rf, rok := numericFloat(r)
	if !lok || !rok {
		return BoxError(NewInterpreterError(loc, "unsupported operand types for %q: %v, %v", op, l.Tag, r.Tag))
	}
	switch op {
	case "+":
		return BoxFloat(float32(lf + rf))
	case "-":
		return BoxFloat(float32(lf - rf))
	case "*":
		return BoxFloat(float32(lf * rf))
	case "/":
		if rf == 0 {
			return BoxError(NewInterpreterError(loc, "division by zero"))
		}
		return BoxFloat(float32(lf / rf))
	case "%":
		if rf == 0 {
			return BoxError(NewInterpreterError(loc, "division by zero"))
		}
		return BoxFloat(float32(int64(lf) % int64(rf)))
	}
	return BoxError(NewInterpreterError(loc, "unsupported operator %q", op))
}

func (e *Evaluator) evalUnary(n *UnaryExpr, scope *Scope) Box {
	v := e.evalExpr(n.Operand, scope)
	if v.IsError() || v.IsState() {
		return v
	}
	switch n.Op {
	case "-":
		if v.Tag == TagInt {
			return BoxInt(-v.Int())
		}
		if f, ok := numericFloat(v); ok {
			return BoxFloat(float32(-f))
		}
		return BoxError(NewInterpreterError(n.Pos(), "cannot negate %v", v.Tag))
	case "!":
		return BoxBool(!v.Truthy())
	default:
		return BoxError(NewInterpreterError(n.Pos(), "unsupported unary operator %q", n.Op))
	}
}

// ---------------------------------------------------------------------
// Calls, members, methods
// ---------------------------------------------------------------------

func (e *Evaluator) evalArgs(exprs []Expression, scope *Scope) ([]Box, Box) {
	out := make([]Box, 0, len(exprs))
	for _, a := range exprs {
		v := e.evalExpr(a, scope)
		if v.IsError() || v.IsState() {
			return nil, v
		}
		out = append(out, v)
	}
	return out, Box{}
}

func (e *Evaluator) evalCall(n *CallExpr, scope *Scope) Box {
	if member, ok := n.Callee.(*MemberExpr); ok {
		return e.evalMethodCall(member, n.Args, scope)
	}
	fnBox := e.evalExpr(n.Callee, scope)
	if fnBox.IsError() || fnBox.IsState() {
		return fnBox
	}
	args, errBox := e.evalArgs(n.Args, scope)
	if errBox.Tag == PtrError {
		return errBox
	}
	return e.invoke(fnBox, args, n.Pos())
}

func (e *Evaluator) invoke(fnBox Box, args []Box, loc SourceLocation) Box {
	if fnBox.Tag != PtrHeap {
		return BoxError(NewInterpreterError(loc, "call of non-function value"))
	}
	fr, ok := fnBox.Heap().payload.(*FunctionRecord)
	if !ok {
		return BoxError(NewInterpreterError(loc, "call of non-function value"))
	}
	if fr.IsNative() {
		return e.invokeNative(fr, args, loc)
	}
	callScope := NewScope(fr.Captured, "")
	if errBox, ok := e.bindParams(fr.Params, args, callScope, loc); !ok {
		return errBox
	}
	if fr.IsGenerator {
		gr := NewGeneratorRecord(fr, callScope)
		obj := e.heap.Alloc(TypeGeneratorRecord, 0, gr, e.roots(callScope))
		return BoxHeap(obj)
	}
	if fr.Body == nil && fr.Expr != nil {
		return e.evalExpr(fr.Expr, callScope)
	}
	ctx := e.currentCtx()
	ctx.PushFrame(Frame{FuncName: fr.Name, Location: loc})
	v := e.evalBlock(fr.Body, callScope)
	if !v.IsError() {
		// On error the frame stays so the driver can print the traceback.
		ctx.PopFrame()
	}
	if v.IsState() && v.State() == StateReturn {
		return v.StatePayload()
	}
	return v
}

func (e *Evaluator) bindParams(params []Param, args []Box, scope *Scope, loc SourceLocation) (Box, bool) {
	if len(args) > len(params) {
		return BoxError(NewInterpreterError(loc, "too many arguments: expected %d, got %d", len(params), len(args))), false
	}
	for i, p := range params {
		if i < len(args) {
			scope.DefineLocal(p.Name, args[i])
			continue
		}
		if p.Default != nil {
			v := e.evalExpr(p.Default, scope)
			if v.IsError() {
				return v, false
			}
			scope.DefineLocal(p.Name, v)
			continue
		}
		scope.DefineLocal(p.Name, BoxNull())
	}
	return Box{}, true
}

func (e *Evaluator) invokeNative(fr *FunctionRecord, args []Box, loc SourceLocation) Box {
	switch fr.NativeArity {
	case Arity0:
		if len(args) != 0 {
			return arityError(fr.Name, 0, len(args), loc)
		}
	case Arity1:
		if len(args) != 1 {
			return arityError(fr.Name, 1, len(args), loc)
		}
	case Arity2:
		if len(args) != 2 {
			return arityError(fr.Name, 2, len(args), loc)
		}
	case Arity3:
		if len(args) != 3 {
			return arityError(fr.Name, 3, len(args), loc)
		}
	}
	ctx := e.currentCtx()
	return fr.Native(ctx, args)
}

func arityError(name string, want, got int, loc SourceLocation) Box {
	return BoxError(NewNativeError("%s: expected %d argument(s), got %d", name, want, got))
}

func (e *Evaluator) evalMember(n *MemberExpr, scope *Scope) Box {
	obj := e.evalExpr(n.Object, scope)
	if obj.IsError() || obj.IsState() {
		return obj
	}
	inst, ok := e.asObjectInstance(obj)
	if !ok {
		return BoxError(NewInterpreterError(n.Pos(), "member access on non-object value"))
	}
	if v, found := inst.Fields.Lookup(n.Name); found {
		return v
	}
	return BoxError(NewInterpreterError(n.Pos(), "no member %q on %s", n.Name, inst.Template.Name))
}

func (e *Evaluator) asObjectInstance(b Box) (*ObjectInstance, bool) {
	if b.Tag != PtrHeap {
		return nil, false
	}
	inst, ok := b.Heap().payload.(*ObjectInstance)
	return inst, ok
}

// evalMethodCall implements spec §4.7's three-step method resolution:
// the object's own scope, then TypeName_method in the module scope,
// then a generic `method` in the module scope. The receiver is
// prepended to the call's arguments in the latter two cases.
func (e *Evaluator) evalMethodCall(member *MemberExpr, argExprs []Expression, scope *Scope) Box {
	recv := e.evalExpr(member.Object, scope)
	if recv.IsError() || recv.IsState() {
		return recv
	}
	args, errBox := e.evalArgs(argExprs, scope)
	if errBox.Tag == PtrError {
		return errBox
	}
	inst, ok := e.asObjectInstance(recv)
	if !ok {
		return BoxError(NewInterpreterError(member.Pos(), "method call on non-object value"))
	}
	fn, prependRecv, found := e.findMethod(recv, member.Name)
	if !found {
		return BoxError(NewInterpreterError(member.Pos(), "no method %q on %s", member.Name, inst.Template.Name))
	}
	if prependRecv {
		args = append([]Box{recv}, args...)
	}
	return e.invoke(fn, args, member.Pos())
}

// findMethod resolves name against recv using spec §4.7's three-step method
// resolution (the object's own scope, then TypeName_method in module scope,
// then a generic method in module scope) without invoking it. prependRecv
// reports whether the caller must prepend recv to the argument list, true
// for the latter two steps. Used by evalMethodCall and by natives (sample,
// native.go) that need to dispatch to a value's own method.
func (e *Evaluator) findMethod(recv Box, name string) (fn Box, prependRecv bool, ok bool) {
	inst, isObj := e.asObjectInstance(recv)
	if !isObj {
		return Box{}, false, false
	}
	if v, found := inst.Fields.Lookup(name); found {
		if _, isFn := e.asFunctionRecord(v); isFn {
			return v, false, true
		}
	}
	qualified := inst.Template.Name + "_" + name
	if v, found := e.moduleScope.Lookup(qualified); found {
		return v, true, true
	}
	if v, found := e.moduleScope.Lookup(name); found {
		return v, true, true
	}
	return Box{}, false, false
}

func (e *Evaluator) asFunctionRecord(b Box) (*FunctionRecord, bool) {
	if b.Tag != PtrHeap {
		return nil, false
	}
	fr, ok := b.Heap().payload.(*FunctionRecord)
	return fr, ok
}

func (e *Evaluator) evalObjectLiteral(n *ObjectLiteral, scope *Scope) Box {
	tmplBox, ok := scope.Lookup(n.Type)
	if !ok || tmplBox.Tag != PtrArena {
		return BoxError(NewInterpreterError(n.Pos(), "unknown struct %q", n.Type))
	}
	tmpl, ok := tmplBox.Arena().payload.(*StructTemplate)
	if !ok {
		return BoxError(NewInterpreterError(n.Pos(), "%q is not a struct", n.Type))
	}
	provided := make(map[string]Expression, len(n.Fields))
	for _, f := range n.Fields {
		provided[f.Name] = f.Value
	}
	fieldsScope := NewScope(nil, tmpl.Name)
	for _, f := range tmpl.Fields {
		var v Box
		if expr, has := provided[f.Name]; has {
			v = e.evalExpr(expr, scope)
		} else if f.Default != nil {
			v = e.evalExpr(f.Default, scope)
		} else {
			v = BoxNull()
		}
		if v.IsError() {
			return v
		}
		fieldsScope.DefineLocal(f.Name, v)
	}
	inst := &ObjectInstance{Template: tmpl, Fields: fieldsScope}
	obj := e.heap.Alloc(TypeObjectInstance, 0, inst, e.roots(fieldsScope))
	return BoxHeap(obj)
}

// ---------------------------------------------------------------------
// Loops / comprehensions
// ---------------------------------------------------------------------

func (e *Evaluator) evalLoop(n *LoopExpr, scope *Scope) Box {
	switch n.Kind {
	case LoopStream:
		return e.runLoopStream(n, scope)
	case LoopForever:
		return e.runLoopForever(n, scope)
	default:
		return e.runLoopCond(n, scope)
	}
}

// collector accumulates a `for` comprehension's body values into a
// growable array; nil when the loop is a plain `loop`.
type collector struct {
	obj *HeapObject
	fa  *FlexibleArray
}

func (e *Evaluator) newCollector(n *LoopExpr, scope *Scope) *collector {
	if !n.IsComprehension {
		return nil
	}
	obj := NewFlexibleArray(e.heap, e.roots(scope))
	return &collector{obj: obj, fa: obj.payload.(*FlexibleArray)}
}

func (c *collector) result() Box {
	if c == nil {
		return BoxNull()
	}
	return BoxHeap(c.obj)
}

func (e *Evaluator) runLoopCond(n *LoopExpr, scope *Scope) Box {
	col := e.newCollector(n, scope)
	for {
		cond := e.evalExpr(n.Cond, scope)
		if cond.IsError() || cond.IsState() {
			return cond
		}
		if !cond.Truthy() {
			break
		}
		v := e.evalBlock(n.Body, NewScope(scope, ""))
		if v.IsError() {
			return v
		}
		if v.IsState() {
			if v.State() == StateDone {
				break
			}
			return v
		}
		if col != nil {
			col.fa.Push(v)
		}
	}
	return col.result()
}

func (e *Evaluator) runLoopForever(n *LoopExpr, scope *Scope) Box {
	col := e.newCollector(n, scope)
	for {
		v := e.evalBlock(n.Body, NewScope(scope, ""))
		if v.IsError() {
			return v
		}
		if v.IsState() {
			if v.State() == StateDone {
				break
			}
			return v
		}
		if col != nil {
			col.fa.Push(v)
		}
	}
	return col.result()
}

type streamSource struct {
	name   string
	values []Box
	gen    *GeneratorRecord
}

func asIterable(v Box) ([]Box, *GeneratorRecord, bool) {
	switch v.Tag {
	case PtrArena:
		if fa, ok := v.Arena().payload.(*FixedArray); ok {
			out := make([]Box, len(fa.items))
			copy(out, fa.items)
			return out, nil, true
		}
	case PtrHeap:
		switch p := v.Heap().payload.(type) {
		case *FlexibleArray:
			out := make([]Box, len(p.items))
			copy(out, p.items)
			return out, nil, true
		case *GeneratorRecord:
			return nil, p, true
		}
	}
	return nil, nil, false
}

func (e *Evaluator) runLoopStream(n *LoopExpr, scope *Scope) Box {
	loopScope := NewScope(scope, "")
	var streams []streamSource
	length := -1
	for _, b := range n.Bindings {
		v := e.evalExpr(b.Value, scope)
		if v.IsError() || v.IsState() {
			return v
		}
		if !b.Stream {
			loopScope.DefineLocal(b.Name, v)
			continue
		}
		values, gen, ok := asIterable(v)
		if !ok {
			return BoxError(NewInterpreterError(b.Value.Pos(), "binding %q is not iterable", b.Name))
		}
		streams = append(streams, streamSource{name: b.Name, values: values, gen: gen})
		if gen == nil && (length < 0 || len(values) < length) {
			length = len(values)
		}
	}
	if len(streams) == 0 {
		// No stream bindings at all (only plain value bindings, or none):
		// evaluate the bindings once and run the body exactly once, per
		// spec.md:164, rather than looping forever on the unset length.
		length = 1
	}
	col := e.newCollector(n, loopScope)
	ctx := e.currentCtx()
	for i := 0; length < 0 || i < length; i++ {
		iterScope := NewScope(loopScope, "")
		exhausted := false
		for _, s := range streams {
			if s.gen != nil {
				val, done := s.gen.Next(ctx, e)
				if done {
					exhausted = true
					break
				}
				iterScope.DefineLocal(s.name, val)
			} else {
				iterScope.DefineLocal(s.name, s.values[i])
			}
		}
		if exhausted {
			break
		}
		v := e.evalBlock(n.Body, iterScope)
		if v.IsError() {
			return v
		}
		if v.IsState() {
			if v.State() == StateDone {
				break
			}
			return v
		}
		if col != nil {
			col.fa.Push(v)
		}
	}
	return col.result()
}
