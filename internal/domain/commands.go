package domain

import (
	"fmt"
	"strings"
	"time"
)

// Command identifies one AI transformation. The set is closed: every value
// below CommandCount has an entry in the metadata table.
type Command int

const (
	CommandProofread Command = iota
	CommandTranslate
	CommandDiacritize
	CommandImprove
	CommandSummarize
	CommandExpand
	CommandFormalize
	CommandCasualize
	CommandReply
	CommandComplete

	CommandExplain
	CommandFix
	CommandFormat
	CommandConvert
	CommandGenerate
	CommandCompleteCode
	CommandOptimize
	CommandComment
	CommandTest
	CommandDocument

	CommandCount
)

type CommandFamily string

const (
	FamilyText CommandFamily = "text"
	FamilyCode CommandFamily = "code"
)

// ContextScope selects how the operative text is derived from the document.
type ContextScope int

const (
	ScopeSentence ContextScope = iota
	ScopeBuffer
)

// ApplyMode selects how a successful result is written back.
type ApplyMode int

const (
	ApplyReplace ApplyMode = iota
	ApplyAppend
	ApplyNone
)

type TimeoutClass string

const (
	TimeoutText  TimeoutClass = "text"
	TimeoutReply TimeoutClass = "reply"
	TimeoutCode  TimeoutClass = "code"
)

// GenerationParams are the numeric knobs sent in generationConfig. Zero TopP
// and TopK are omitted from the request.
type GenerationParams struct {
	Temperature     float64
	TopP            float64
	TopK            int
	MaxOutputTokens int
}

type CommandInfo struct {
	Slug      string
	Label     string
	LabelAr   string
	Icon      string
	Color     string
	Family    CommandFamily
	Scope     ContextScope
	Apply     ApplyMode
	Timeout   TimeoutClass
	Params    GenerationParams
	StripCode bool
}

var (
	textParams  = GenerationParams{Temperature: 0.7, TopP: 0.95, TopK: 40, MaxOutputTokens: 1024}
	replyParams = GenerationParams{Temperature: 0.8, MaxOutputTokens: 512}
	codeParams  = GenerationParams{Temperature: 0.3, MaxOutputTokens: 2048}
)

func textCommand(slug, label, labelAr, icon, color string) CommandInfo {
	return CommandInfo{
		Slug: slug, Label: label, LabelAr: labelAr, Icon: icon, Color: color,
		Family: FamilyText, Scope: ScopeSentence, Apply: ApplyReplace,
		Timeout: TimeoutText, Params: textParams,
	}
}

func codeCommand(slug, label, labelAr, icon, color string, apply ApplyMode) CommandInfo {
	return CommandInfo{
		Slug: slug, Label: label, LabelAr: labelAr, Icon: icon, Color: color,
		Family: FamilyCode, Scope: ScopeBuffer, Apply: apply,
		Timeout: TimeoutCode, Params: codeParams, StripCode: true,
	}
}

var commandTable = [CommandCount]CommandInfo{
	CommandProofread:  textCommand("proofread", "Proofread", "تدقيق", "eye", "blue"),
	CommandTranslate:  textCommand("translate", "Translate", "ترجمة", "globe", "green"),
	CommandDiacritize: textCommand("diacritize", "Diacritize", "تشكيل", "textformat", "purple"),
	CommandImprove:    textCommand("improve", "Improve", "تحسين", "wand.and.stars", "orange"),
	CommandSummarize:  textCommand("summarize", "Summarize", "تلخيص", "doc.text", "indigo"),
	CommandExpand:     textCommand("expand", "Expand", "توسيع", "arrow.up.left.and.arrow.down.right", "teal"),
	CommandFormalize:  textCommand("formalize", "Formal", "رسمي", "briefcase", "gray"),
	CommandCasualize:  textCommand("casualize", "Casual", "عامي", "face.smiling", "pink"),
	CommandReply: {
		Slug: "reply", Label: "Smart reply", LabelAr: "رد ذكي", Icon: "arrowshape.turn.up.left", Color: "cyan",
		Family: FamilyText, Scope: ScopeSentence, Apply: ApplyNone,
		Timeout: TimeoutReply, Params: replyParams,
	},
	CommandComplete: textCommand("complete", "Complete", "إكمال", "text.badge.plus", "mint"),

	CommandExplain:      codeCommand("explain", "Explain code", "شرح الكود", "questionmark.circle", "blue", ApplyAppend),
	CommandFix:          codeCommand("fix", "Fix errors", "تصحيح الأخطاء", "wrench.and.screwdriver", "red", ApplyReplace),
	CommandFormat:       codeCommand("format", "Format", "تنسيق", "text.alignleft", "green", ApplyReplace),
	CommandConvert:      codeCommand("convert", "Convert language", "تحويل اللغة", "arrow.triangle.2.circlepath", "purple", ApplyReplace),
	CommandGenerate:     codeCommand("generate", "Generate code", "توليد كود", "wand.and.stars", "orange", ApplyReplace),
	CommandCompleteCode: codeCommand("complete-code", "Complete code", "إكمال", "text.badge.plus", "cyan", ApplyReplace),
	CommandOptimize:     codeCommand("optimize", "Optimize", "تحسين", "bolt", "yellow", ApplyReplace),
	CommandComment:      codeCommand("comment", "Add comments", "تعليقات", "text.bubble", "gray", ApplyReplace),
	CommandTest:         codeCommand("test", "Write tests", "اختبارات", "checkmark.shield", "indigo", ApplyAppend),
	CommandDocument:     codeCommand("document", "Document", "توثيق", "doc.text", "teal", ApplyAppend),
}

func (c Command) Valid() bool {
	return c >= 0 && c < CommandCount
}

// Info returns the static metadata of c. It panics on values outside the
// closed set, which can only be produced by an unchecked conversion.
func (c Command) Info() CommandInfo {
	if !c.Valid() {
		panic(fmt.Sprintf("domain: command %d outside the closed set", int(c)))
	}
	return commandTable[c]
}

func (c Command) String() string {
	if !c.Valid() {
		return fmt.Sprintf("command(%d)", int(c))
	}
	return commandTable[c].Slug
}

func (c Command) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("unknown command %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Command) UnmarshalText(text []byte) error {
	parsed, ok := ParseCommand(string(text))
	if !ok {
		return fmt.Errorf("unknown command %q", string(text))
	}
	*c = parsed
	return nil
}

// Commands lists the closed set in display order.
func Commands() []Command {
	all := make([]Command, 0, CommandCount)
	for c := Command(0); c < CommandCount; c++ {
		all = append(all, c)
	}
	return all
}

func CommandsInFamily(family CommandFamily) []Command {
	var out []Command
	for _, c := range Commands() {
		if commandTable[c].Family == family {
			out = append(out, c)
		}
	}
	return out
}

func ParseCommand(slug string) (Command, bool) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	for c := Command(0); c < CommandCount; c++ {
		if commandTable[c].Slug == slug {
			return c, true
		}
	}
	return 0, false
}

var timeoutDefaults = map[TimeoutClass]time.Duration{
	TimeoutText:  15 * time.Second,
	TimeoutReply: 20 * time.Second,
	TimeoutCode:  30 * time.Second,
}

func DefaultTimeout(class TimeoutClass) time.Duration {
	if d, ok := timeoutDefaults[class]; ok {
		return d
	}
	return timeoutDefaults[TimeoutText]
}
