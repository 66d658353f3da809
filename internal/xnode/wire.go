package xnode

import "encoding/json"

// Node type tags used in the wire encoding of a tree structure, per spec.md §6.
const (
	NodeTypeAction             = "ActionNode"
	NodeTypeCondition          = "ConditionNode"
	NodeTypeSequence           = "SequenceNode"
	NodeTypeSelector           = "SelectorNode"
	NodeTypeParallel           = "ParallelNode"
	NodeTypeInvert             = "InvertDecorator"
	NodeTypeRepeat             = "RepeatDecorator"
	NodeTypeTimeout            = "TimeoutDecorator"
	NodeTypeRepeatUntilSuccess = "RepeatUntilSuccessDecorator"
)

// NodeSpec is the declarative, JSON-encodable description of one tree node, recursively encoding composites and
// decorators via Children/Child. It round-trips: a stored tree records the NodeSpec it was built from (Tree.Spec,
// set by TreeStore), and get_tree serializes it back out verbatim.
type NodeSpec struct {
	Type string `json:"type"`

	// leaves
	Action      string `json:"action,omitempty"`
	Condition   string `json:"condition,omitempty"`
	Repeat      bool   `json:"repeat,omitempty"`
	RepeatCount int    `json:"repeat_count,omitempty"`
	ExecuteOnce bool   `json:"execute_once,omitempty"`

	// composites
	Children []*NodeSpec `json:"children,omitempty"`

	// ParallelNode
	SuccessThreshold int `json:"success_threshold,omitempty"`

	// decorators
	Child *NodeSpec `json:"child,omitempty"`

	// RepeatDecorator
	N int `json:"n,omitempty"`

	// RepeatUntilSuccessDecorator
	MaxRetries int `json:"max_retries,omitempty"`

	// TimeoutDecorator
	TimeoutMS int `json:"timeout_ms,omitempty"`
}

// Envelope is the single wire-frame shape for every command request and response, per spec.md §6. Fields are
// optional and interpreted according to Command (on a request) or the command the response answers.
type Envelope struct {
	// request fields
	Command       string    `json:"command,omitempty"`
	Name          string    `json:"name,omitempty"`
	TreeID        string    `json:"tree_id,omitempty"`
	TreeStructure *NodeSpec `json:"tree_structure,omitempty"`
	RequestID     string    `json:"requestId,omitempty"`

	// response fields
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`

	Actions    []string  `json:"actions,omitempty"`
	Conditions []string  `json:"conditions,omitempty"`
	Tree       *NodeSpec `json:"tree,omitempty"`
	Result     *bool     `json:"result,omitempty"`
	Error      string    `json:"error,omitempty"`

	// run_tree's final Result, encoded as its status string ("success"/"failure"/"running")
	RunStatus string `json:"run_status,omitempty"`
}

// Encode marshals the envelope to a single JSON frame.
func Encode(e Envelope) ([]byte, error) {
	return json.Marshal(e)
}

// Decode unmarshals a single JSON frame into an Envelope.
func Decode(frame []byte) (Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(frame, &e); err != nil {
		return Envelope{}, err
	}
	return e, nil
}

func ok() Envelope { return Envelope{Status: "ok"} }

func fail(tag ErrorTag, message string) Envelope {
	if message == "" {
		message = string(tag)
	}
	return Envelope{Status: "error", Message: message}
}
