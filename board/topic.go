package board

// Topic is the closed set of column categories on a retro board. A Thought's
// Topic names the column it lives in; a Column's Topic is fixed at creation.
type Topic string

const (
	TopicHappy    Topic = "happy"
	TopicConfused Topic = "confused"
	TopicUnhappy  Topic = "unhappy"

	// TopicAction backs the virtual action-item column. It never appears on a
	// persisted Column row and is not a legal Thought topic.
	TopicAction Topic = "action"
)

// ThoughtTopics returns the topics a Thought may carry, in board display order.
func ThoughtTopics() []Topic {
	return []Topic{TopicHappy, TopicConfused, TopicUnhappy}
}

// ValidThoughtTopic reports whether t is a legal topic for a Thought.
func ValidThoughtTopic(t Topic) bool {
	switch t {
	case TopicHappy, TopicConfused, TopicUnhappy:
		return true
	}
	return false
}

// Sortable reports whether the column for t supports heart-count sorting.
// The virtual action column has no hearts to sort by.
func (t Topic) Sortable() bool {
	return t != TopicAction
}
