package pipeline

import (
	"regexp"
	"strings"
)

// Placeholder names recognized in admission templates.
const (
	PlaceholderPatientName = "NOME_PACIENTE"
	PlaceholderBirthDate   = "DATA_NASCIMENTO"
	PlaceholderToday       = "DATA_ATUAL"
	PlaceholderHeaderImage = "CABECALHO_IMAGEM"
)

// HeaderImageToken marks where the header image goes. It survives
// substitution and is consumed by the generator before layout.
const HeaderImageToken = "{{" + PlaceholderHeaderImage + "}}"

// substitutable lists the placeholders Substitute may replace.
// The header image token is deliberately absent.
var substitutable = []string{
	PlaceholderPatientName,
	PlaceholderBirthDate,
	PlaceholderToday,
}

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// Token returns the {{NAME}} form of a placeholder name.
func Token(name string) string {
	return "{{" + name + "}}"
}

// Bindings builds the binding map for the three patient placeholders.
func Bindings(patientName, birthDate, today string) map[string]string {
	return map[string]string{
		PlaceholderPatientName: patientName,
		PlaceholderBirthDate:   birthDate,
		PlaceholderToday:       today,
	}
}

// Substitute replaces every occurrence of each bound, recognized placeholder.
// Replacement happens in a single pass, so bound values are never rescanned
// for further placeholders. Unknown or unbound tokens are left verbatim.
func Substitute(template string, bindings map[string]string) string {
	pairs := make([]string, 0, 2*len(substitutable))
	for _, name := range substitutable {
		value, ok := bindings[name]
		if !ok {
			continue
		}
		pairs = append(pairs, Token(name), value)
	}
	if len(pairs) == 0 {
		return template
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

// HasHeaderImage reports whether content carries the header image token.
func HasHeaderImage(content string) bool {
	return strings.Contains(content, HeaderImageToken)
}

// StripHeaderImage removes every header image token from content.
func StripHeaderImage(content string) string {
	return strings.ReplaceAll(content, HeaderImageToken, "")
}

// NormalizeLineEndings converts \r\n and \r to \n.
func NormalizeLineEndings(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}
