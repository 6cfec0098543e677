package spec

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return e.message
}

var (
	// lexical errors
	synErrZeroLink    = newSyntaxError("a link number must be greater than or equal to 1")
	synErrZeroGap     = newSyntaxError("a gap budget must be greater than or equal to 1")
	synErrInvalidWord = newSyntaxError("a word must be a non-empty string without white spaces")
	synErrEmptyQuoted = newSyntaxError("a quoted token must not be empty")

	// syntax errors
	synErrInvalidToken        = newSyntaxError("invalid token")
	synErrNoProductionName    = newSyntaxError("a production name is missing")
	synErrNoRuleName          = newSyntaxError("a rule needs the name of its production")
	synErrNoColon             = newSyntaxError("the colon must follow a name")
	synErrNoArrow             = newSyntaxError("the arrow must follow the LHS")
	synErrNoLHS               = newSyntaxError("a production needs a LHS non-terminal")
	synErrNoSemicolon         = newSyntaxError("the semicolon is missing at the last of a statement")
	synErrEmptyRHS            = newSyntaxError("a production needs at least one RHS element")
	synErrEmptyNL             = newSyntaxError("a rule needs at least one natural-language element")
	synErrNoDirectiveName     = newSyntaxError("a directive needs a name")
	synErrUnclosedArgs        = newSyntaxError("unclosed argument list")
	synErrInvalidArg          = newSyntaxError("an argument must be a variable")
	synErrUnclosedTuple       = newSyntaxError("unclosed type tuple")
	synErrInvalidTupleElem    = newSyntaxError("an element of a type tuple must be an ID")
	synErrLinkWithoutSymbol   = newSyntaxError("a link must follow a non-terminal name")
	synErrNonTerminalNoLink   = newSyntaxError("a non-terminal in a rule needs a link such as #1")
	synErrUnexpectedStatement = newSyntaxError("a statement must be a directive, a production, or a rule")
)
