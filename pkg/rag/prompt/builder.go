package prompt

import (
	"fmt"
	"strings"

	"ai-shopchat-be/internal/entity"
)

// Marker literals shared with pkg/rag/response. They are part of the wire
// contract with the model: the compiled prompt asks for them and the parser
// splits on them. Changing either string breaks parsing silently.
const (
	ResponseMarker = "[Response]:"
	SummaryMarker  = "[Updated Summary]:"
)

// NoPriorSummary is rendered when a session has no stored summary yet.
const NoPriorSummary = "(No prior summary)"

// Builder compiles the grounding prompt for one chat turn: prior summary,
// user query and retrieved products, plus the output format contract.
// Identical inputs compile to identical text.
type Builder struct {
	summary  string
	query    string
	products []entity.Product
}

// NewBuilder creates a prompt builder. Pass summary="" when the session has
// no prior context.
func NewBuilder(summary, query string, products []entity.Product) *Builder {
	return &Builder{
		summary:  summary,
		query:    query,
		products: products,
	}
}

func (b *Builder) Build() string {
	var prompt strings.Builder

	b.writeRole(&prompt)
	b.writeSummary(&prompt)
	b.writeUserQuery(&prompt)
	b.writeProducts(&prompt)
	b.writeInstructions(&prompt)
	b.writeFormat(&prompt)

	return prompt.String()
}

func (b *Builder) writeRole(prompt *strings.Builder) {
	prompt.WriteString("You are an AI assistant helping a user find products.\n")
}

func (b *Builder) writeSummary(prompt *strings.Builder) {
	prompt.WriteString("Conversation summary so far:\n")
	if b.summary == "" {
		prompt.WriteString(NoPriorSummary)
	} else {
		prompt.WriteString(b.summary)
	}
	prompt.WriteString("\n")
}

func (b *Builder) writeUserQuery(prompt *strings.Builder) {
	prompt.WriteString("User query: ")
	prompt.WriteString(b.query)
	prompt.WriteString("\n")
}

func (b *Builder) writeProducts(prompt *strings.Builder) {
	// Zero products renders an empty section; the instructions still read
	// sensibly because the retrieval path may come back empty.
	prompt.WriteString("Here are some relevant products:\n")
	for _, p := range b.products {
		prompt.WriteString(fmt.Sprintf("- %s: %s, category: %s, price: %g\n",
			p.Name, p.Description, p.Category, p.Price))
	}
}

func (b *Builder) writeInstructions(prompt *strings.Builder) {
	prompt.WriteString("Answer the user's question using the product info above, it may be that there is no exact product in which case you can recommend related products.\n")
	prompt.WriteString("\n")
	prompt.WriteString("1. Reply to the user's message, using the relevant products using exact product names.\n")
	prompt.WriteString("2. Update the summary of the conversation so far to include this message and your response. Keep this concise.\n")
	prompt.WriteString("\n")
}

func (b *Builder) writeFormat(prompt *strings.Builder) {
	prompt.WriteString("Respond in this format:\n")
	prompt.WriteString(ResponseMarker + " <your reply>\n")
	prompt.WriteString(SummaryMarker + " <updated summary>\n")
	prompt.WriteString("including the square brackets")
}
