package shell

// RedirKind tags the three redirection actions spec §4.5 recognizes.
type RedirKind int

const (
	RedirIn RedirKind = iota
	RedirOutTruncate
	RedirOutAppend
)

// RedirAction is one {kind, path} entry produced by the redirection
// planner (spec §3's Redirection plan).
type RedirAction struct {
	Kind RedirKind
	Path string
}

// Segment is one pipeline stage after redirection planning: the
// reduced argv (operators and filenames removed) plus the actions
// extracted from it.
type Segment struct {
	Argv    []string
	Actions []RedirAction
}

// Exe returns the segment's executable name, argv[0].
func (s *Segment) Exe() string {
	return s.Argv[0]
}

// Pipeline is an ordered, non-empty sequence of Segments (spec §3).
type Pipeline struct {
	Segments []*Segment
}

// SplitPipeline cuts a normalized command line at every unquoted '|',
// trimming each piece (spec §4.3). A double-quote toggles quoting for
// the purpose of recognizing '|' only; token structure inside each
// piece is resolved later by Tokenize.
func SplitPipeline(line string) ([]string, error) {
	if line == "" {
		return nil, ErrNoCommands
	}

	var pieces []string
	var cur []byte
	inQuotes := false

	for i := 0; i < len(line); i++ {
		b := line[i]
		switch {
		case b == '"':
			inQuotes = !inQuotes
			cur = append(cur, b)
		case b == '|' && !inQuotes:
			pieces = append(pieces, Normalize(string(cur)))
			cur = cur[:0]
		default:
			cur = append(cur, b)
		}
	}
	pieces = append(pieces, Normalize(string(cur)))

	if len(pieces) > CmdMax {
		return nil, TooManyCommandsError(CmdMax)
	}
	for _, p := range pieces {
		if p == "" {
			return nil, ErrNoCommands
		}
	}
	return pieces, nil
}

// expectFilename returns tokens[i+1] if it exists, or a syntax error
// naming op otherwise (spec §4.5: "a trailing operator without a
// filename is a syntax error").
func expectFilename(tokens []string, i int, op string) (string, error) {
	if i+1 >= len(tokens) || tokens[i+1] == "" {
		return "", &SyntaxError{Msg: "missing filename after '" + op + "'"}
	}
	return tokens[i+1], nil
}

// SyntaxError reports a redirection-planning failure. ParsePipeline
// returns it before any stage is started, so no command of the line runs.
type SyntaxError struct {
	Msg string
}

func (e *SyntaxError) Error() string { return "syntax error: " + e.Msg }

// PlanRedirection scans argv left-to-right for the operators <, >,
// >> and removes each operator token together with its following
// filename token, recording a RedirAction for each (spec §4.5). The
// comparison is against whole tokens only (spec §9 open question (b)):
// a quoted "<" survives tokenization as the literal string `<` with no
// marker distinguishing it from an unquoted one, so an argv produced
// from a quoted redirection-looking token is indistinguishable from a
// real operator at this layer — by design, matching the original
// implementation's behavior of planning on the already-tokenized argv.
func PlanRedirection(argv []string) (*Segment, error) {
	seg := &Segment{}

	for i := 0; i < len(argv); i++ {
		tok := argv[i]
		switch tok {
		case "<":
			file, err := expectFilename(argv, i, "<")
			if err != nil {
				return nil, err
			}
			seg.Actions = append(seg.Actions, RedirAction{Kind: RedirIn, Path: file})
			i++
		case ">":
			file, err := expectFilename(argv, i, ">")
			if err != nil {
				return nil, err
			}
			seg.Actions = append(seg.Actions, RedirAction{Kind: RedirOutTruncate, Path: file})
			i++
		case ">>":
			file, err := expectFilename(argv, i, ">>")
			if err != nil {
				return nil, err
			}
			seg.Actions = append(seg.Actions, RedirAction{Kind: RedirOutAppend, Path: file})
			i++
		default:
			seg.Argv = append(seg.Argv, tok)
		}
	}

	if len(seg.Argv) == 0 {
		return nil, &SyntaxError{Msg: "empty command"}
	}
	return seg, nil
}

// ParsePipeline normalizes, splits, tokenizes, and redirection-plans a
// full command line into a Pipeline (spec §2's control flow).
func ParsePipeline(line string) (*Pipeline, error) {
	line = Normalize(line)
	pieces, err := SplitPipeline(line)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{}
	for _, piece := range pieces {
		argv, err := Tokenize(piece)
		if err != nil {
			return nil, err
		}
		seg, err := PlanRedirection(argv)
		if err != nil {
			return nil, err
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}
