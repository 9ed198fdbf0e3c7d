package types

// Category is a short classification label produced by the extractor.
// It is free-form: the extractor names categories dynamically
// (e.g. "Infrastructure", "Budget") rather than picking from a fixed set.
type Category string

// DefaultCategory is assigned when the extractor omits a category.
const DefaultCategory Category = "other"

// OrDefault returns the category, falling back to DefaultCategory when empty.
func (c Category) OrDefault() Category {
	if c == "" {
		return DefaultCategory
	}
	return c
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// Source marks the provenance of a memory. Informational only.
type Source string

// SourceConversation marks memories extracted from user conversations.
const SourceConversation Source = "user_conversation"
