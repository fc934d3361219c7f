package parser

// Chain is the fixed, ordered list of line parsers tried on every
// non-blank DBC line. Order matters: the first parser to accept a
// line stops the chain.
func Chain() []LineParser {
	return []LineParser{
		NodeLineParser{},
		IgnoreLineParser{},
		MessageLineParser{},
		ExtraMessageLineParser{},
		SignalLineParser{},
		SignalValueTypeLineParser{},
	}
}

// Dispatch tries each parser in chain against line, in order,
// stopping at the first one that reports it handled the line.
func Dispatch(chain []LineParser, line string, ctx *Context) error {
	for _, p := range chain {
		handled, err := p.TryParse(line, ctx)
		if handled {
			return err
		}
	}
	return nil
}
