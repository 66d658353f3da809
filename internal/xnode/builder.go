package xnode

import (
	"context"
	"fmt"
	"time"

	"github.com/xnodehq/xnode/behaviortree"
)

// Builder constructs behaviortree.Node graphs from NodeSpec, resolving leaf names against a LeafRegistry and
// routing remote-leaf ticks through a Router, per spec.md §4.3.
type Builder struct {
	registry *LeafRegistry
	router   Invoker
}

// NewBuilder constructs a Builder over registry and router.
func NewBuilder(registry *LeafRegistry, router Invoker) *Builder {
	return &Builder{registry: registry, router: router}
}

// BuildResult is everything produced by a successful Build: the root Node, and the Timeout-scopes created along
// the way (so the Engine can cancel all of them together, e.g. on stop_tree).
type BuildResult struct {
	Root   behaviortree.Node
	Scopes []*behaviortree.Context
}

// Build converts spec into a Node graph. rootCtxFn supplies the run's current root context.Context on demand -
// leaves not nested under a Timeout invoke against it directly; leaves nested under a Timeout instead observe
// that Timeout's own scope context, which itself derives from rootCtxFn. history is the tree's Context (leaf
// evaluation log), shared by every leaf in the tree. Build is atomic: any error discards the partially built graph.
func (b *Builder) Build(spec *NodeSpec, history *Context, rootCtxFn func() context.Context) (BuildResult, error) {
	if spec == nil {
		return BuildResult{}, NewError(SchemaError, "nil tree structure")
	}
	var scopes []*behaviortree.Context
	root, err := b.build(spec, history, rootCtxFn, &scopes)
	if err != nil {
		return BuildResult{}, err
	}
	return BuildResult{Root: root, Scopes: scopes}, nil
}

func (b *Builder) build(spec *NodeSpec, history *Context, ctxFn func() context.Context, scopes *[]*behaviortree.Context) (behaviortree.Node, error) {
	switch spec.Type {
	case NodeTypeAction:
		if spec.Action == "" {
			return nil, NewError(SchemaError, "ActionNode requires action")
		}
		if _, err := b.registry.Resolve(spec.Action); err != nil {
			return nil, err
		}
		return NewActionLeaf(spec.Action, spec.Repeat, spec.RepeatCount, spec.ExecuteOnce, b.router, history, ctxFn).WithName(spec.Action), nil

	case NodeTypeCondition:
		if spec.Condition == "" {
			return nil, NewError(SchemaError, "ConditionNode requires condition")
		}
		if _, err := b.registry.Resolve(spec.Condition); err != nil {
			return nil, err
		}
		return NewConditionLeaf(spec.Condition, b.router, history, ctxFn).WithName(spec.Condition), nil

	case NodeTypeSequence:
		children, err := b.buildChildren(spec.Children, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, NewError(SchemaError, "SequenceNode requires at least one child")
		}
		return behaviortree.New(behaviortree.Memorize(behaviortree.Sequence), children...).WithName("sequence"), nil

	case NodeTypeSelector:
		children, err := b.buildChildren(spec.Children, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, NewError(SchemaError, "SelectorNode requires at least one child")
		}
		return behaviortree.New(behaviortree.Memorize(behaviortree.Selector), children...).WithName("selector"), nil

	case NodeTypeParallel:
		children, err := b.buildChildren(spec.Children, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		if len(children) == 0 {
			return nil, NewError(SchemaError, "ParallelNode requires at least one child")
		}
		if spec.SuccessThreshold < 1 || spec.SuccessThreshold > len(children) {
			return nil, NewError(SchemaError, "ParallelNode success_threshold out of range")
		}
		name := fmt.Sprintf("parallel(%d/%d)", spec.SuccessThreshold, len(children))
		return behaviortree.New(behaviortree.Memorize(behaviortree.Parallel(spec.SuccessThreshold)), children...).WithName(name), nil

	case NodeTypeInvert:
		child, err := b.buildChild(spec, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		return behaviortree.Invert(child).WithName("invert"), nil

	case NodeTypeRepeat:
		if spec.N < 1 {
			return nil, NewError(SchemaError, "RepeatDecorator requires n >= 1")
		}
		child, err := b.buildChild(spec, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		return behaviortree.Repeat(child, spec.N).WithName(fmt.Sprintf("repeat(%d)", spec.N)), nil

	case NodeTypeRepeatUntilSuccess:
		if spec.MaxRetries < 1 {
			return nil, NewError(SchemaError, "RepeatUntilSuccessDecorator requires max_retries >= 1")
		}
		child, err := b.buildChild(spec, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("repeat_until_success(%d)", spec.MaxRetries)
		return behaviortree.RepeatUntilSuccess(child, spec.MaxRetries).WithName(name), nil

	case NodeTypeTimeout:
		if spec.TimeoutMS <= 0 {
			return nil, NewError(SchemaError, "TimeoutDecorator requires timeout_ms > 0")
		}
		if spec.Child == nil {
			return nil, NewError(SchemaError, "TimeoutDecorator requires child")
		}
		scope := new(behaviortree.Context)
		*scopes = append(*scopes, scope)
		scopedCtxFn := func() context.Context { return scope.Ctx() }
		child, err := b.build(spec.Child, history, scopedCtxFn, scopes)
		if err != nil {
			return nil, err
		}
		duration := time.Duration(spec.TimeoutMS) * time.Millisecond
		name := fmt.Sprintf("timeout(%s)", duration)
		return behaviortree.Timeout(scope, ctxFn, duration, child).WithName(name), nil

	default:
		return nil, NewError(SchemaError, "unknown node type: "+spec.Type)
	}
}

func (b *Builder) buildChild(spec *NodeSpec, history *Context, ctxFn func() context.Context, scopes *[]*behaviortree.Context) (behaviortree.Node, error) {
	if spec.Child == nil {
		return nil, NewError(SchemaError, spec.Type+" requires child")
	}
	return b.build(spec.Child, history, ctxFn, scopes)
}

func (b *Builder) buildChildren(specs []*NodeSpec, history *Context, ctxFn func() context.Context, scopes *[]*behaviortree.Context) ([]behaviortree.Node, error) {
	children := make([]behaviortree.Node, 0, len(specs))
	for _, s := range specs {
		child, err := b.build(s, history, ctxFn, scopes)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}
