package query

// Category tells the formatter which kind of reply to produce.
type Category string

const (
	CategoryResults          Category = "results"
	CategoryNoResults        Category = "no_results"
	CategoryRetrievalFailure Category = "retrieval_failure"
)

var defaultMessages = map[Category]string{
	CategoryNoResults:        "I couldn't find any invoices matching your query. You might not have any invoices uploaded yet, or try a different search term.",
	CategoryRetrievalFailure: "I encountered an error while searching for your invoices. Please try a simpler query.",
}

const synthesisFailureMessage = "I couldn't convert your question into a valid database query. Please try rephrasing your question."

// Message returns the default user-facing phrase for an outcome. Outcomes
// with rows return an empty string; phrasing results is the formatter's job.
func Message(o Outcome) string {
	if o.Category == CategoryRetrievalFailure && o.ErrorKind == ErrorKindSecurityOrSynthesis {
		return synthesisFailureMessage
	}
	return defaultMessages[o.Category]
}

func categorize(o Outcome) Category {
	switch {
	case !o.Success:
		return CategoryRetrievalFailure
	case len(o.Rows) == 0:
		return CategoryNoResults
	default:
		return CategoryResults
	}
}
