package domain

import "strings"

type ProgrammingLanguage string

const (
	LangSwift      ProgrammingLanguage = "swift"
	LangPython     ProgrammingLanguage = "python"
	LangJavaScript ProgrammingLanguage = "javascript"
	LangTypeScript ProgrammingLanguage = "typescript"
	LangJava       ProgrammingLanguage = "java"
	LangKotlin     ProgrammingLanguage = "kotlin"
	LangCSharp     ProgrammingLanguage = "csharp"
	LangCPP        ProgrammingLanguage = "cpp"
	LangGo         ProgrammingLanguage = "go"
	LangRust       ProgrammingLanguage = "rust"
	LangPHP        ProgrammingLanguage = "php"
	LangRuby       ProgrammingLanguage = "ruby"
	LangSQL        ProgrammingLanguage = "sql"
	LangHTML       ProgrammingLanguage = "html"
	LangCSS        ProgrammingLanguage = "css"
	LangDart       ProgrammingLanguage = "dart"
	LangShell      ProgrammingLanguage = "shell"
)

var languageNames = map[ProgrammingLanguage]string{
	LangSwift:      "Swift",
	LangPython:     "Python",
	LangJavaScript: "JavaScript",
	LangTypeScript: "TypeScript",
	LangJava:       "Java",
	LangKotlin:     "Kotlin",
	LangCSharp:     "C#",
	LangCPP:        "C++",
	LangGo:         "Go",
	LangRust:       "Rust",
	LangPHP:        "PHP",
	LangRuby:       "Ruby",
	LangSQL:        "SQL",
	LangHTML:       "HTML",
	LangCSS:        "CSS",
	LangDart:       "Dart",
	LangShell:      "Shell/Bash",
}

// DisplayName returns the human name of a known language, or the raw value
// for anything else so free-form targets still reach the prompt.
func (l ProgrammingLanguage) DisplayName() string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}

// ParseProgrammingLanguage accepts either the identifier or the display name.
func ParseProgrammingLanguage(raw string) (ProgrammingLanguage, bool) {
	needle := strings.ToLower(strings.TrimSpace(raw))
	if needle == "" {
		return "", false
	}
	for lang, name := range languageNames {
		if string(lang) == needle || strings.ToLower(name) == needle {
			return lang, true
		}
	}
	return "", false
}
