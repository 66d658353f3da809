package xnode

import "github.com/xnodehq/xnode/behaviortree"

// Result is the tri-state outcome of a leaf invocation or a tree run: a behaviortree.Status plus an optional
// payload and, for Failure, an optional ErrorTag recording why.
type Result struct {
	Status behaviortree.Status
	Value  any
	Tag    ErrorTag
}

// Success constructs a Result with status Success.
func Success(value any) Result {
	return Result{Status: behaviortree.Success, Value: value}
}

// Failure constructs a Result with status Failure and the given ErrorTag.
func Failure(tag ErrorTag) Result {
	return Result{Status: behaviortree.Failure, Tag: tag}
}

// Running constructs a Result with status Running.
func Running() Result {
	return Result{Status: behaviortree.Running}
}

// FromBool converts a boolean leaf result to Success or Failure, per spec.md's Action/Condition semantics.
func FromBool(ok bool) Result {
	if ok {
		return Success(true)
	}
	return Failure("")
}
