package prompt

// TextSummary condenses a long text to a bounded length.
var TextSummary = Template{
	Name:        "text_summary",
	Description: "summarize a long text within a given length",
	Required:    []string{"text", "maxLength"},
	Text: `Summarize the core content of the following text in at most {maxLength} characters.

Keep the most important information and the key message, drop incidental detail, and preserve the meaning and context of the original.

Original text:
{text}

Summary:`,
}

// QuestionAnswer is the system instruction for retrieval-augmented
// turns: persona, answer only from the supplied context, decline when
// the context is insufficient, citations at the end rather than inline.
var QuestionAnswer = Template{
	Name:        "question_answer",
	Description: "context-grounded question answering",
	Required:    []string{"query", "context"},
	Text: `You are the company's dedicated information assistant.

User question:
{query}

Retrieved company material:
--------------------------
{context}
--------------------------

Answer guidelines:
- Base the answer only on the retrieved company material above.
- Do not guess when the material is uncertain or silent.
- Be clear, helpful, and easy to follow; answer in markdown.
- If the question carries a [Sources: ...] block, do not cite sources inline; list them separately at the end of the answer.

If the material does not contain an answer, say so, apologize briefly, and suggest rephrasing the question or contacting the relevant team directly.`,
}

// Conversation keeps a multi-turn exchange coherent with its history.
var Conversation = Template{
	Name:        "conversation",
	Description: "history-aware conversational reply",
	Required:    []string{"history", "message"},
	Text: `You are a friendly, helpful assistant. Continue the conversation naturally and consistently with the earlier exchange: keep its tone and context, respond with empathy, and offer concrete help or a clarifying question when useful.

Previous conversation:
{history}

New user message: {message}

Reply:`,
}
