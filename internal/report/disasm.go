package report

import (
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// stubDarkStyle is a disassembly color scheme for PLT-slot diagnostic
// output, registered once at package init.
var stubDarkStyle = styles.Register(chroma.MustNewStyle("stub-dark", chroma.StyleEntries{
	chroma.Text:           "#FFFFFF",
	chroma.Background:     "bg:#000000",
	chroma.Comment:        "#FF8000",
	chroma.CommentPreproc: "#FF8000",
	chroma.Keyword:        "#FFFFFF",
	chroma.KeywordPseudo:  "#FFFFFF",
	chroma.Name:           "#87CEEB",
	chroma.NameBuiltin:    "#87CEEB",
	chroma.NameVariable:   "#87CEEB",

	chroma.LiteralNumber:        "#FF80C0",
	chroma.LiteralNumberHex:     "#FF80C0",
	chroma.LiteralNumberInteger: "#FF80C0",

	chroma.NameLabel:    "#FFC800",
	chroma.NameFunction: "#FFFFFF",
	chroma.Operator:     "#FFFFFF",
	chroma.Punctuation:  "#FFFFFF",
	chroma.String:       "#00FF00",
}))

// colorDisabled returns true if terminal coloring is disabled via
// environment, mirroring the teacher's NO_COLOR convention.
func colorDisabled() bool {
	return os.Getenv("NO_COLOR") != ""
}

func getAssemblyLexer() chroma.Lexer {
	for _, name := range []string{"nasm", "gas", "GAS", "Gas", "armasm"} {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer
		}
	}
	return nil
}

func getTerminalFormatter() chroma.Formatter {
	for _, name := range []string{"terminal16m", "terminal256"} {
		if formatter := formatters.Get(name); formatter != nil {
			return formatter
		}
	}
	return formatters.Fallback
}

// Instruction colorizes a single disassembled instruction line (x86-64 or
// aarch64 mnemonic text) for the `inspect`/`stub` CLI's diagnostic output.
// Returns the input unchanged if coloring is disabled or lexing fails.
func Instruction(insn string) string {
	if colorDisabled() {
		return insn
	}

	lexer := getAssemblyLexer()
	if lexer == nil {
		return insn
	}

	style := styles.Get("stub-dark")
	if style == nil {
		style = stubDarkStyle
	}
	formatter := getTerminalFormatter()

	iterator, err := lexer.Tokenise(nil, insn)
	if err != nil {
		return insn
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return insn
	}

	return strings.TrimSuffix(buf.String(), "\n")
}
