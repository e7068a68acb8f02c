package engine

import "errors"

// ErrNotAuthorized indicates the user lacks the capability the operation
// requires. It carries no detail about the folder tree.
var ErrNotAuthorized = errors.New("not authorized")

// ErrEmptyQuestion indicates the conversation contained no usable question.
var ErrEmptyQuestion = errors.New("empty question")
