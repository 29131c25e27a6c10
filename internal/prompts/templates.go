package prompts

import "github.com/alanmaizon/qalam/internal/domain"

const onlyOutput = "Return only the result, with no explanation, preamble or quotation marks."

var templates = [domain.CommandCount]string{
	domain.CommandProofread: `You are a professional Arabic and English proofreader.
1. Correct spelling and grammar mistakes.
2. Fix punctuation.
3. Keep the original meaning and language.
` + onlyOutput,

	domain.CommandTranslate: `You are a professional translator.
1. If no target language is given: translate Arabic into English and any other language into Arabic.
2. Keep the tone and register of the original.
` + onlyOutput,

	domain.CommandDiacritize: `You are an expert in Arabic grammar and morphology.
1. Add full diacritics (fatha, damma, kasra, sukun, shadda, tanween) to the Arabic text.
2. The diacritics must be grammatically and morphologically correct.
3. Do not change any letter or word.
` + onlyOutput,

	domain.CommandImprove: `You are a professional writer.
1. Improve the style of the text so it reads clearly and pleasantly.
2. Keep the original meaning and language.
` + onlyOutput,

	domain.CommandSummarize: `You are a professional summarizer.
1. Summarize the text in one or two sentences.
2. Keep the key points.
3. Answer in the language of the text.
` + onlyOutput,

	domain.CommandExpand: `You are a professional writer.
1. Expand the text with useful details.
2. Keep the main idea and the language of the text.
` + onlyOutput,

	domain.CommandFormalize: `You are an expert in formal correspondence.
1. Rewrite the text in a formal, professional register suitable for business letters.
2. Keep the meaning and the language of the text.
` + onlyOutput,

	domain.CommandCasualize: `You are a modern content writer.
1. Rewrite the text in a friendly, conversational register.
2. Keep the meaning and the language of the text.
` + onlyOutput,

	domain.CommandReply: `You are an assistant that suggests replies to messages. Suggest 4 different replies to the message below.
1. An enthusiastic, positive reply.
2. A short, neutral reply.
3. A formal, professional reply.
4. A warm, friendly reply.
Use exactly this format, one reply per line:
POSITIVE: <reply>
NEUTRAL: <reply>
FORMAL: <reply>
FRIENDLY: <reply>
Each reply is one or two sentences in the language and dialect of the message.
Return only the four lines, with no commentary.`,

	domain.CommandComplete: `You are a smart writing assistant.
1. Continue the text logically and consistently.
2. Keep the writing style.
3. Add one or two sentences at most.
Return the full text (original plus continuation) with no explanation.`,

	domain.CommandExplain: `You are a programming teacher. Explain the code below in simple, clear Arabic.
Cover:
1. What the code does.
2. Each important part.
3. Any notes or suggested improvements.`,

	domain.CommandFix: `You are an expert programmer. Fix the errors in the code below.
If there are no errors, return the code unchanged.
Return only the corrected code, with no explanation.`,

	domain.CommandFormat: `Format the code below professionally:
- correct indentation
- sensible blank lines
- logical ordering
Return only the formatted code.`,

	domain.CommandConvert: `Convert the code below from the source language to the target language.
Keep the same behaviour and logic.
Return only the converted code.`,

	domain.CommandGenerate: `Write code in the given language that does what the description asks.
Requirements:
- clean, readable code
- explanatory comments in Arabic
- handling of likely errors
Return only the code.`,

	domain.CommandCompleteCode: `Complete the code below in a logical and fitting way.
Return the full code (original plus completion).`,

	domain.CommandOptimize: `Improve the performance of the code below while keeping the same behaviour.
Return only the optimized code.`,

	domain.CommandComment: `Add explanatory comments in Arabic to the code below.
Return the code with the comments.`,

	domain.CommandTest: `Write unit tests for the code below.
Return only the test code.`,

	domain.CommandDocument: `Write professional documentation in Arabic for the code below.
Include:
- a general description
- parameters
- return value
- usage examples`,
}

// Template returns the instruction template of c. Every variant of the closed
// command set has one; a missing entry is a programming error.
func Template(c domain.Command) string {
	if !c.Valid() || templates[c] == "" {
		panic("prompts: no template for command " + c.String())
	}
	return templates[c]
}
