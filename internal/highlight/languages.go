package highlight

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	gosrc "github.com/smacker/go-tree-sitter/golang"
	pythonsrc "github.com/smacker/go-tree-sitter/python"
)

// Language is a grammar plus its highlight query.
type Language struct {
	Name           string
	Aliases        []string
	TreeSitterLang *sitter.Language
	Query          string
}

const goQuery = `
(comment) @comment
(interpreted_string_literal) @string
(raw_string_literal) @string
(rune_literal) @string.special
(int_literal) @number
(float_literal) @number
(type_identifier) @type
(function_declaration name: (identifier) @function.definition)
(method_declaration name: (field_identifier) @function.definition)
(call_expression function: (identifier) @function.call)
[
  "package" "import" "func" "return" "if" "else" "for" "range"
  "var" "const" "type" "struct" "interface" "map" "chan"
  "go" "defer" "switch" "case" "default" "select" "break" "continue"
] @keyword
`

const pythonQuery = `
(comment) @comment
(string) @string
(integer) @number
(float) @number
(function_definition name: (identifier) @function.definition)
(call function: (identifier) @function.call)
[
  "def" "return" "if" "elif" "else" "for" "while" "in" "import" "from"
  "class" "with" "as" "pass" "lambda"
] @keyword
`

var languages = []*Language{
	{Name: "go", Aliases: []string{"golang"}, TreeSitterLang: gosrc.GetLanguage(), Query: goQuery},
	{Name: "python", Aliases: []string{"py"}, TreeSitterLang: pythonsrc.GetLanguage(), Query: pythonQuery},
}

// LanguageFor finds a language by name or alias, case-insensitively.
func LanguageFor(name string) *Language {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range languages {
		if l.Name == name {
			return l
		}
		for _, a := range l.Aliases {
			if a == name {
				return l
			}
		}
	}
	return nil
}

// Languages lists the supported language names.
func Languages() []string {
	names := make([]string, len(languages))
	for i, l := range languages {
		names[i] = l.Name
	}
	return names
}
