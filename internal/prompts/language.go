package prompts

import (
	"strings"

	"github.com/alanmaizon/qalam/internal/domain"
)

type languageRule struct {
	lang  domain.ProgrammingLanguage
	match func(code string) bool
}

func anyOf(code string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(code, needle) {
			return true
		}
	}
	return false
}

// Rules are checked in order; the first hit wins.
var languageRules = []languageRule{
	{domain.LangSwift, func(c string) bool {
		return anyOf(c, "import foundation", "import swiftui", "@state", "@binding") ||
			(strings.Contains(c, "func ") && strings.Contains(c, "-> "))
	}},
	{domain.LangGo, func(c string) bool {
		return anyOf(c, "package main", "func main()", "fmt.")
	}},
	{domain.LangPython, func(c string) bool {
		return anyOf(c, "def ", "print(", "elif ") ||
			(strings.Contains(c, "import ") && strings.Contains(c, ":"))
	}},
	{domain.LangTypeScript, func(c string) bool {
		return anyOf(c, "const ", "let ", "function ", "=>", "console.log") &&
			anyOf(c, ": string", ": number", "interface ")
	}},
	{domain.LangJavaScript, func(c string) bool {
		return anyOf(c, "const ", "let ", "function ", "=>", "console.log")
	}},
	{domain.LangJava, func(c string) bool {
		return anyOf(c, "public class", "public static void main", "system.out.println")
	}},
	{domain.LangKotlin, func(c string) bool {
		return anyOf(c, "val ", "var ") || (strings.Contains(c, "fun ") && strings.Contains(c, ":"))
	}},
	{domain.LangCSharp, func(c string) bool {
		return anyOf(c, "using system", "namespace ", "console.writeline")
	}},
	{domain.LangCPP, func(c string) bool {
		return anyOf(c, "#include", "std::", "cout")
	}},
	{domain.LangRust, func(c string) bool {
		return anyOf(c, "fn main()", "let mut", "println!")
	}},
	{domain.LangPHP, func(c string) bool {
		return anyOf(c, "<?php", "echo ", "$_")
	}},
	{domain.LangRuby, func(c string) bool {
		return strings.Contains(c, "puts ") || (strings.Contains(c, "def ") && strings.Contains(c, "end"))
	}},
	{domain.LangSQL, func(c string) bool {
		return anyOf(c, "select ", "insert into", "create table")
	}},
	{domain.LangHTML, func(c string) bool {
		return anyOf(c, "<html", "<div", "<body")
	}},
	{domain.LangCSS, func(c string) bool {
		return strings.Contains(c, "{") && strings.Contains(c, "}") && anyOf(c, "color:", "margin:", "padding:")
	}},
	{domain.LangDart, func(c string) bool {
		return strings.Contains(c, "widget") || (strings.Contains(c, "void main()") && strings.Contains(c, "print("))
	}},
	{domain.LangShell, func(c string) bool {
		return strings.Contains(c, "#!/bin/bash") || (strings.Contains(c, "echo ") && strings.Contains(c, "$"))
	}},
}

// DetectLanguage guesses the programming language of code from keywords. It
// is a cheap heuristic for labelling prompts, not a parser.
func DetectLanguage(code string) (domain.ProgrammingLanguage, bool) {
	lowered := strings.ToLower(code)
	if strings.TrimSpace(lowered) == "" {
		return "", false
	}
	for _, rule := range languageRules {
		if rule.match(lowered) {
			return rule.lang, true
		}
	}
	return "", false
}
