package parser

import "strings"

// ignorePrefixes match by prefix: the rest of the line is a
// free-form argument list (comments, attribute definitions, value
// tables, and the other directives this module has no use for).
var ignorePrefixes = []string{
	"VERSION", "BS_", "NS_ ", "NS_DESC_", "CM_", "BA_DEF_", "BA_", "VAL_",
	"CAT_DEF_", "CAT_", "FILTER", "BA_DEF_DEF_", "EV_DATA_", "ENVVAR_DATA_",
	"SGTYPE_", "SGTYPE_VAL_", "BA_DEF_SGTYPE_", "BA_SGTYPE_",
	"SIG_TYPE_REF_", "VAL_TABLE_", "SIG_GROUP_", "SIGTYPE_VALTYPE_",
	"BA_DEF_REL_", "BA_REL_", "BA_DEF_DEF_REL_",
	"BU_SG_REL_", "BU_EV_REL_", "BU_BO_REL_", "SG_MUL_VAL_",
}

// ignoreExact match only a bare directive with nothing after it.
// SIG_VALTYPE_ and BO_TX_BU_ also start populated lines that carry
// real data (handled by their dedicated parsers further down the
// chain), so they are recognized here only when they appear with no
// trailing content at all.
var ignoreExact = map[string]bool{
	"SIG_VALTYPE_": true, "BO_TX_BU_": true,
}

// IgnoreLineParser recognizes DBC directives this module has no use
// for and consumes them without side effects.
type IgnoreLineParser struct{}

func (IgnoreLineParser) TryParse(line string, ctx *Context) (bool, error) {
	trimmed := strings.TrimSpace(line)
	for _, p := range ignorePrefixes {
		if strings.HasPrefix(trimmed, p) {
			return true, nil
		}
	}
	return ignoreExact[trimmed], nil
}
