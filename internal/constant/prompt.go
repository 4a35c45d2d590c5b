package constant

// GroundedAnswerPromptV1 is the chat prompt template. %s slots are the
// retrieved context (chunks joined by blank lines, best match first) and
// the user question. The "say you don't know" instruction is a grounding
// contract: the model must not answer from outside the context.
const GroundedAnswerPromptV1 = `You are a helpful assistant.
Answer ONLY from the provided document context.
If the context is insufficient, just say you don't know.

Context:
%s

Question: %s

Answer:`
