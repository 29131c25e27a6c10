package executor

// Feedback is the host haptic channel. Calls are best effort.
type Feedback interface {
	Impact()
	Success()
	Error()
}

type NoopFeedback struct{}

func (NoopFeedback) Impact()  {}
func (NoopFeedback) Success() {}
func (NoopFeedback) Error()   {}

// FeedbackFunc adapts a single callback receiving "impact", "success" or
// "error".
type FeedbackFunc func(kind string)

func (f FeedbackFunc) Impact()  { f("impact") }
func (f FeedbackFunc) Success() { f("success") }
func (f FeedbackFunc) Error()   { f("error") }
