package core

type outcomeKind int

const (
	outcomePending outcomeKind = iota
	outcomeSuccess
	outcomeRejected
)

// Outcome is the classification of one hub response: Pending, Success(T) or Rejected(reason).
type Outcome[T any] struct {
	kind   outcomeKind
	value  T
	reason string
}

// Classifier inspects a raw hub output.
type Classifier[T any] func(RawOutput) Outcome[T]

func Pending[T any](reason string) Outcome[T] {
	return Outcome[T]{kind: outcomePending, reason: reason}
}

func Success[T any](v T) Outcome[T] {
	return Outcome[T]{kind: outcomeSuccess, value: v}
}

func Rejected[T any](reason string) Outcome[T] {
	return Outcome[T]{kind: outcomeRejected, reason: reason}
}

func (o Outcome[T]) IsPending() bool  { return o.kind == outcomePending }
func (o Outcome[T]) IsSuccess() bool  { return o.kind == outcomeSuccess }
func (o Outcome[T]) IsRejected() bool { return o.kind == outcomeRejected }

// Value returns the success value.
func (o Outcome[T]) Value() T { return o.value }

// Reason describes why the outcome is pending or rejected.
func (o Outcome[T]) Reason() string { return o.reason }
